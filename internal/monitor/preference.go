package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"
)

// Settings that carry the reduced motion preference
const (
	gnomeInterfaceNS   = "org.gnome.desktop.interface"
	gnomeAnimationsKey = "enable-animations"
	kdeGlobalsNS       = "org.kde.kdeglobals.KDE"
	kdeAnimationKey    = "AnimationDurationFactor"
)

// PortalPreference watches the desktop reduced motion preference through the
// freedesktop Settings portal
type PortalPreference struct {
	logger          *zap.Logger
	changes         chan bool
	mu              sync.RWMutex
	running         bool
	reduced         bool
	cancel          context.CancelFunc
	conn            DBusClient // Interface for testability
	dial            func() (DBusClient, error)
	signals         chan *dbus.Signal
	lastDropWarning time.Time      // Rate limiting for "channel full" warnings
	wg              sync.WaitGroup // Tracks the signal goroutine
}

// NewPortalPreference creates a portal-backed preference. Until Start
// succeeds the preference reads as "motion allowed".
func NewPortalPreference(logger *zap.Logger) *PortalPreference {
	return &PortalPreference{
		logger:  logger,
		changes: make(chan bool, 4),
		dial: func() (DBusClient, error) {
			return NewStdDBusClient()
		},
	}
}

// Start connects to the session bus, reads the current preference and keeps
// watching for changes in the background until Stop.
func (p *PortalPreference) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	watchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p.cancel = cancel
	p.mu.Unlock()

	conn, err := p.dial()
	if err != nil {
		p.logger.Warn("Failed to connect to session bus", zap.Error(err))
		p.reset()
		return fmt.Errorf("session bus connection failed: %w", err)
	}

	// Check if we were stopped while connecting to D-Bus
	select {
	case <-watchCtx.Done():
		p.logger.Info("Preference monitor stopped during D-Bus connection")
		if err := conn.Close(); err != nil {
			p.logger.Warn("Failed to close D-Bus connection", zap.Error(err))
		}
		return watchCtx.Err()
	default:
	}

	p.mu.Lock()
	p.conn = conn
	p.mu.Unlock()

	if reduced, err := p.readInitial(); err != nil {
		p.logger.Warn("Failed to read motion preference, assuming motion is allowed", zap.Error(err))
	} else {
		p.mu.Lock()
		p.reduced = reduced
		p.mu.Unlock()
	}

	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(portalPath),
		dbus.WithMatchInterface(settingsIface),
		dbus.WithMatchMember("SettingChanged"),
	); err != nil {
		p.logger.Error("Failed to add match signal", zap.Error(err))
		p.closeConn()
		p.reset()
		return fmt.Errorf("failed to add match signal: %w", err)
	}

	p.signals = make(chan *dbus.Signal, 10)
	conn.Signal(p.signals)

	p.wg.Add(1)
	go p.monitorSignals(watchCtx, p.signals)

	p.logger.Info("Motion preference monitor started", zap.Bool("reducedMotion", p.ReducedMotion()))
	return nil
}

// Stop gracefully stops the monitor and closes Changes
func (p *PortalPreference) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.running = false
	p.mu.Unlock()

	// Wait for the signal goroutine before closing the channel
	// This prevents "send on closed channel" panic
	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.changes != nil {
		close(p.changes)
		p.changes = nil
	}
	if p.conn != nil {
		if p.signals != nil {
			p.conn.RemoveSignal(p.signals)
		}
		if err := p.conn.Close(); err != nil {
			p.logger.Warn("Failed to close D-Bus connection", zap.Error(err))
		}
		p.conn = nil
	}

	p.logger.Info("Motion preference monitor shutdown complete")
	return nil
}

// ReducedMotion returns the live preference value
func (p *PortalPreference) ReducedMotion() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.reduced
}

// Changes returns a read-only channel that emits every new preference value
func (p *PortalPreference) Changes() <-chan bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.changes
}

// readInitial queries GNOME first, then KDE
func (p *PortalPreference) readInitial() (bool, error) {
	v, gnomeErr := p.conn.ReadSetting(gnomeInterfaceNS, gnomeAnimationsKey)
	if gnomeErr == nil {
		if reduced, ok := parseSetting(gnomeInterfaceNS, gnomeAnimationsKey, v); ok {
			return reduced, nil
		}
	}

	v, kdeErr := p.conn.ReadSetting(kdeGlobalsNS, kdeAnimationKey)
	if kdeErr == nil {
		if reduced, ok := parseSetting(kdeGlobalsNS, kdeAnimationKey, v); ok {
			return reduced, nil
		}
	}

	if gnomeErr != nil {
		return false, fmt.Errorf("failed to read %s: %w", gnomeAnimationsKey, gnomeErr)
	}
	return false, fmt.Errorf("no usable motion setting found")
}

func (p *PortalPreference) monitorSignals(ctx context.Context, signals <-chan *dbus.Signal) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("Preference signal goroutine stopped")
			return
		case sig := <-signals:
			if sig == nil {
				continue
			}
			p.handleSignal(sig)
		}
	}
}

// handleSignal processes a SettingChanged signal.
// The body is (namespace string, key string, value variant).
func (p *PortalPreference) handleSignal(sig *dbus.Signal) {
	if sig.Name != settingChanged || len(sig.Body) < 3 {
		return
	}

	namespace, ok := sig.Body[0].(string)
	if !ok {
		return
	}
	key, ok := sig.Body[1].(string)
	if !ok {
		return
	}
	value, ok := sig.Body[2].(dbus.Variant)
	if !ok {
		return
	}

	reduced, ok := parseSetting(namespace, key, value)
	if !ok {
		return
	}
	p.update(reduced)
}

// update records a new value and notifies without blocking
func (p *PortalPreference) update(reduced bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.reduced == reduced || p.changes == nil {
		p.reduced = reduced
		return
	}
	p.reduced = reduced

	select {
	case p.changes <- reduced:
		p.logger.Info("Motion preference changed", zap.Bool("reducedMotion", reduced))
	default:
		p.logChannelFullWarning()
	}
}

// parseSetting maps a portal setting to the reduced motion flag.
// ok is false for settings unrelated to motion or of an unexpected type.
func parseSetting(namespace, key string, value dbus.Variant) (reduced bool, ok bool) {
	value = unwrapVariant(value)

	switch {
	case namespace == gnomeInterfaceNS && key == gnomeAnimationsKey:
		enabled, ok := value.Value().(bool)
		if !ok {
			return false, false
		}
		return !enabled, true

	case namespace == kdeGlobalsNS && key == kdeAnimationKey:
		switch f := value.Value().(type) {
		case float64:
			return f == 0, true
		case string:
			return f == "0" || f == "0.0", true
		}
	}
	return false, false
}

func (p *PortalPreference) closeConn() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

func (p *PortalPreference) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = false
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

// logChannelFullWarning is rate limited, caller holds mu
func (p *PortalPreference) logChannelFullWarning() {
	const warningInterval = 5 * time.Second
	now := time.Now()

	if now.Sub(p.lastDropWarning) >= warningInterval {
		p.logger.Warn("Preference channel full, dropping change (consumer may be slow)")
		p.lastDropWarning = now
	}
}
