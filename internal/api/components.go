package api

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/char5742/gesture-hid/internal/config"
	"github.com/char5742/gesture-hid/internal/features"
	"github.com/char5742/gesture-hid/internal/hid"
	"github.com/char5742/gesture-hid/internal/macro"
	"github.com/char5742/gesture-hid/internal/panel"
	"github.com/char5742/gesture-hid/internal/sensor"
	"github.com/char5742/gesture-hid/internal/transport"
)

// Components は設定から組み立てたサービスの部品
type Components struct {
	Catalog   *macro.Catalog
	Link      *hid.LinkState
	Transport transport.Transport
	Frames    *transport.FrameFeed
	Selector  *panel.Selector
	Buttons   features.Buttons
	// GestureSocket はwebsocketセンサーのときだけ設定される
	GestureSocket *sensor.WebSocketSensor
	OpenSensor    sensor.Opener

	monitor *features.DeviceMonitor
	closers []io.Closer
	log     *logrus.Logger
}

// BuildComponents は設定に従ってトランスポートやボタンを開く
func BuildComponents(cfg *config.Config, logger *logrus.Logger) (*Components, error) {
	catalog, err := cfg.Catalog()
	if err != nil {
		return nil, fmt.Errorf("パネル定義の読み込みに失敗しました: %w", err)
	}

	c := &Components{
		Catalog: catalog,
		Link:    &hid.LinkState{},
		Frames:  transport.NewFrameFeed(logger),
		log:     logger,
	}
	c.Selector = panel.NewSelector(catalog, panel.LogDisplay{Log: logger})

	tr, err := openTransport(cfg, c.Link, logger)
	if err != nil {
		return nil, err
	}
	c.Transport = transport.NewMonitor(tr, c.Frames)
	c.closers = append(c.closers, c.Transport)

	if err := c.openButtons(cfg); err != nil {
		_ = c.Close()
		return nil, err
	}

	if err := c.setupSensor(cfg); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// NewService は部品からマクロサービスを作る
func (c *Components) NewService(cfg *config.Config) *MacroService {
	tx := hid.NewTransmitter(c.Transport, c.Link, cfg.HID.KeyDelay, c.log)
	return NewMacroService(c.Catalog, c.Selector, c.Link, tx, c.OpenSensor, c.Buttons, ServiceOptions{
		TickInterval:  cfg.HID.TickInterval,
		SettleDelay:   cfg.HID.SettleDelay,
		RetryInterval: cfg.Sensor.RetryInterval,
	}, c.log)
}

// Close は開いた部品をすべて閉じる
func (c *Components) Close() error {
	if c.monitor != nil {
		c.monitor.Stop()
	}
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func openTransport(cfg *config.Config, link *hid.LinkState, logger *logrus.Logger) (transport.Transport, error) {
	tc := cfg.Transport
	var (
		tr  transport.Transport
		err error
	)
	switch tc.Type {
	case config.TransportBlueZ:
		var b *transport.BlueZ
		if b, err = transport.OpenBlueZ(tc.HCIDevice, link, logger); err == nil {
			tr = b
		}
	case config.TransportGadget:
		var g *transport.Gadget
		if g, err = transport.OpenGadget(tc.GadgetPath, link, logger); err == nil {
			tr = g
		}
	case config.TransportSerial:
		var s *transport.Serial
		if s, err = transport.OpenSerial(tc.SerialPort, tc.SerialBaud, link, logger); err == nil {
			tr = s
		}
	case config.TransportUinput:
		var u *transport.Uinput
		if u, err = transport.OpenUinput(tc.UinputPath, cfg.Device.Name,
			cfg.Device.VendorID, cfg.Device.ProductID, link, logger); err == nil {
			tr = u
		}
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownTransport, tc.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("トランスポート(%s)を開けませんでした: %w", tc.Type, err)
	}
	return tr, nil
}

func (c *Components) openButtons(cfg *config.Config) error {
	bc := cfg.Buttons
	switch bc.Type {
	case config.ButtonsNone:
		c.Buttons = features.NoButtons{}
	case config.ButtonsHook:
		hb := features.StartHookButtons(map[features.Button]uint16{
			features.ButtonPanel: uint16(bc.PanelKey),
			features.ButtonA:     uint16(bc.ButtonAKey),
			features.ButtonB:     uint16(bc.ButtonBKey),
		})
		c.Buttons = hb
		c.closers = append(c.closers, hb)
	case config.ButtonsEvdev:
		kb := features.NewKeyButtons(nil, map[features.Button]int{
			features.ButtonPanel: bc.PanelKey,
			features.ButtonA:     bc.ButtonAKey,
			features.ButtonB:     bc.ButtonBKey,
		})
		c.Buttons = kb
		c.closers = append(c.closers, kb)
		return c.attachKeyboard(kb, bc.KeyboardDevice)
	default:
		return fmt.Errorf("%w: %q", config.ErrUnknownButtons, bc.Type)
	}
	return nil
}

// attachKeyboard はボタンに使うキーボードを開く
// パスを直接指定した場合以外はホットプラグを監視して付け替える
func (c *Components) attachKeyboard(kb *features.KeyButtons, preferred string) error {
	if strings.HasPrefix(preferred, "/dev/") {
		dev, err := features.CreateKeyboard(preferred)
		if err != nil {
			return fmt.Errorf("ボタン用キーボードを開けませんでした: %w", err)
		}
		kb.SetKeyboard(dev)
		return nil
	}

	monitor, err := features.NewDeviceMonitor(c.log)
	if err != nil {
		return fmt.Errorf("デバイスモニターを作成できませんでした: %w", err)
	}
	c.monitor = monitor

	current := ""
	monitor.RegisterCallback(func(ev features.DeviceEvent) {
		if ev.Device.Type != features.DeviceTypeKeyboard {
			return
		}
		dev, ok := features.FindDevice(monitor.Devices(), features.DeviceTypeKeyboard, preferred)
		if !ok {
			if current != "" {
				c.log.Warn("ボタン用キーボードが見つかりません")
				kb.SetKeyboard(nil)
				current = ""
			}
			return
		}
		if dev.Path == current {
			return
		}
		keyboard, err := features.CreateKeyboard(dev.Path)
		if err != nil {
			c.log.WithError(err).WithField("path", dev.Path).Warn("ボタン用キーボードを開けませんでした")
			return
		}
		kb.SetKeyboard(keyboard)
		current = dev.Path
		c.log.WithField("name", dev.Name).Info("ボタン用キーボードを使用します")
	})
	return monitor.Start()
}

func (c *Components) setupSensor(cfg *config.Config) error {
	sc := cfg.Sensor
	switch sc.Type {
	case config.SensorSerial:
		c.OpenSensor = func() (sensor.Sensor, error) {
			s, err := sensor.OpenSerial(sc.SerialPort, sc.SerialBaud, c.log)
			if err != nil {
				return nil, err
			}
			return s, nil
		}
	case config.SensorWebSocket:
		ws := sensor.NewWebSocketSensor(c.log)
		c.GestureSocket = ws
		c.OpenSensor = func() (sensor.Sensor, error) { return ws, nil }
	case config.SensorMouse:
		c.OpenSensor = func() (sensor.Sensor, error) {
			path := sc.MouseDevice
			if !strings.HasPrefix(path, "/dev/") {
				devices, err := features.ScanDevices()
				if err != nil {
					return nil, err
				}
				dev, ok := features.FindDevice(devices, features.DeviceTypeMouse, path)
				if !ok {
					return nil, errors.New("マウスが見つかりません")
				}
				path = dev.Path
			}
			s, err := sensor.OpenMouse(path, sc.SwipeThreshold, c.log)
			if err != nil {
				return nil, err
			}
			return s, nil
		}
	default:
		return fmt.Errorf("%w: %q", config.ErrUnknownSensor, sc.Type)
	}
	return nil
}
