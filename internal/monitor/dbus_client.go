package monitor

import (
	"github.com/godbus/dbus/v5"
)

const (
	portalBusName   = "org.freedesktop.portal.Desktop"
	portalPath      = "/org/freedesktop/portal/desktop"
	settingsIface   = "org.freedesktop.portal.Settings"
	settingChanged  = settingsIface + ".SettingChanged"
	settingsReadOne = settingsIface + ".ReadOne"
	settingsRead    = settingsIface + ".Read"
)

// DBusClient defines the interface for D-Bus operations.
// This abstraction allows us to mock D-Bus interactions in tests.
//
//go:generate mockgen -destination=mocks/dbus_client_mock.go -package=mocks github.com/genricoloni/archivarium/internal/monitor DBusClient
type DBusClient interface {
	// Close closes the D-Bus connection
	Close() error

	// AddMatchSignal adds a signal match rule
	AddMatchSignal(options ...dbus.MatchOption) error

	// Signal registers a channel to receive D-Bus signals
	Signal(ch chan<- *dbus.Signal)

	// RemoveSignal unregisters a channel registered with Signal
	RemoveSignal(ch chan<- *dbus.Signal)

	// ReadSetting reads one value from the desktop Settings portal
	// namespace: e.g. "org.gnome.desktop.interface"
	// key: e.g. "enable-animations"
	ReadSetting(namespace, key string) (dbus.Variant, error)
}

// StdDBusClient is the real implementation using godbus
type StdDBusClient struct {
	conn *dbus.Conn
}

// NewStdDBusClient creates a real D-Bus client connected to the session bus
func NewStdDBusClient() (*StdDBusClient, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, err
	}
	return &StdDBusClient{conn: conn}, nil
}

// Close closes the D-Bus connection
func (c *StdDBusClient) Close() error {
	return c.conn.Close()
}

// AddMatchSignal adds a signal match rule
func (c *StdDBusClient) AddMatchSignal(options ...dbus.MatchOption) error {
	return c.conn.AddMatchSignal(options...)
}

// Signal registers a channel to receive D-Bus signals
func (c *StdDBusClient) Signal(ch chan<- *dbus.Signal) {
	c.conn.Signal(ch)
}

// RemoveSignal unregisters a channel registered with Signal
func (c *StdDBusClient) RemoveSignal(ch chan<- *dbus.Signal) {
	c.conn.RemoveSignal(ch)
}

// ReadSetting reads a portal setting. ReadOne (portal v2) is tried first,
// older portals only implement Read which wraps the value in an extra variant.
func (c *StdDBusClient) ReadSetting(namespace, key string) (dbus.Variant, error) {
	obj := c.conn.Object(portalBusName, dbus.ObjectPath(portalPath))

	var v dbus.Variant
	err := obj.Call(settingsReadOne, 0, namespace, key).Store(&v)
	if err == nil {
		return v, nil
	}

	if err := obj.Call(settingsRead, 0, namespace, key).Store(&v); err != nil {
		return dbus.Variant{}, err
	}
	return unwrapVariant(v), nil
}

// unwrapVariant strips nested variants
func unwrapVariant(v dbus.Variant) dbus.Variant {
	for {
		inner, ok := v.Value().(dbus.Variant)
		if !ok {
			return v
		}
		v = inner
	}
}
