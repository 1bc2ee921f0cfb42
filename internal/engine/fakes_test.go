package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/genricoloni/archivarium/internal/domain"
)

// fakeFetcher returns the reference itself as data and counts calls per ref
type fakeFetcher struct {
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]bool
}

func newFakeFetcher(fail ...string) *fakeFetcher {
	f := &fakeFetcher{calls: make(map[string]int), fail: make(map[string]bool)}
	for _, ref := range fail {
		f.fail[ref] = true
	}
	return f
}

func (f *fakeFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[ref]++
	if f.fail[ref] {
		return nil, errors.New("asset missing")
	}
	return []byte(ref), nil
}

func (f *fakeFetcher) Calls(ref string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[ref]
}

type fakeProcessor struct{}

func (fakeProcessor) Process(ctx context.Context, data []byte) (domain.Preview, error) {
	return domain.Preview{Cols: len(data), Rows: 1}, nil
}
