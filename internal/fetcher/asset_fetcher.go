package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"
)

const _maxImageSize = 10 * 1024 * 1024 // 10 MB

// AssetFetcher loads slide assets from http(s) URLs, file:// URIs or paths
// relative to an asset root
type AssetFetcher struct {
	logger     *zap.Logger
	client     *http.Client
	root       string
	attempts   uint
	retryDelay time.Duration
}

// NewAssetFetcher creates a fetcher resolving relative paths against root
func NewAssetFetcher(logger *zap.Logger, root string) *AssetFetcher {
	return &AssetFetcher{
		logger: logger,
		client: &http.Client{
			Timeout: 10 * time.Second, // Essential to prevent blocking the preloader
		},
		root:       root,
		attempts:   3,
		retryDelay: 200 * time.Millisecond,
	}
}

// Fetch returns the raw bytes of the asset referenced by ref
func (f *AssetFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("empty asset reference")
	}

	u, err := url.Parse(ref)
	if err == nil {
		switch u.Scheme {
		case "http", "https":
			return f.fetchHTTP(ctx, ref)
		case "file":
			return f.readFile(ctx, u.Path)
		}
	}

	return f.readFile(ctx, ResolvePath(f.root, ref))
}

func (f *AssetFetcher) fetchHTTP(ctx context.Context, ref string) ([]byte, error) {
	var data []byte

	err := retry.Do(
		func() error {
			var err error
			data, err = f.get(ctx, ref)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(f.attempts),
		retry.Delay(f.retryDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			f.logger.Debug("Retrying asset fetch",
				zap.Uint("attempt", n+1),
				zap.String("url", ref),
				zap.Error(err))
		}),
	)
	if err != nil {
		return nil, err
	}

	f.logger.Debug("Image fetched successfully", zap.Int("bytes", len(data)), zap.String("url", ref))
	return data, nil
}

func (f *AssetFetcher) get(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("User-Agent", "archivarium/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, retry.Unrecoverable(err)
		}
		return nil, err
	}

	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "image/") {
		return nil, retry.Unrecoverable(fmt.Errorf("url is not an image: %s", resp.Header.Get("Content-Type")))
	}

	limitReader := io.LimitReader(resp.Body, _maxImageSize)

	data, err := io.ReadAll(limitReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	return data, nil
}

// ResolvePath maps a path reference to the file system. Site-root paths such as
// "/screenshots/1.png" that do not exist on disk resolve against root.
func ResolvePath(root, ref string) string {
	if !filepath.IsAbs(ref) {
		return filepath.Join(root, ref)
	}
	if _, err := os.Stat(ref); err != nil && root != "" {
		return filepath.Join(root, strings.TrimPrefix(ref, "/"))
	}
	return ref
}

func (f *AssetFetcher) readFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open asset: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, _maxImageSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read asset: %w", err)
	}

	f.logger.Debug("Asset read successfully", zap.Int("bytes", len(data)), zap.String("path", path))
	return data, nil
}
