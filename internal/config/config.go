package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
)

var (
	ErrUnknownTransport = errors.New("不明なトランスポートです")
	ErrUnknownSensor    = errors.New("不明なセンサーです")
	ErrUnknownButtons   = errors.New("不明なボタンの種類です")
)

// トランスポートの種類
const (
	TransportBlueZ  = "bluez"
	TransportGadget = "gadget"
	TransportSerial = "serial"
	TransportUinput = "uinput"
)

// センサーの種類
const (
	SensorSerial    = "serial"
	SensorWebSocket = "websocket"
	SensorMouse     = "mouse"
)

// ボタン入力の種類
const (
	ButtonsEvdev = "evdev"
	ButtonsHook  = "hook"
	ButtonsNone  = "none"
)

// Config はアプリケーション全体の設定を表す構造体
type Config struct {
	Device    DeviceConfig    `toml:"device"`
	HID       HIDConfig       `toml:"hid"`
	Transport TransportConfig `toml:"transport"`
	Sensor    SensorConfig    `toml:"sensor"`
	Buttons   ButtonsConfig   `toml:"buttons"`
	Log       LogConfig       `toml:"log"`
	Panels    []PanelConfig   `toml:"panels,omitempty"`
}

// DeviceConfig はホストに見せるデバイス情報
type DeviceConfig struct {
	Name         string `toml:"name"`
	Manufacturer string `toml:"manufacturer"`
	BatteryLevel int    `toml:"battery_level"`
	VendorSource uint8  `toml:"vendor_source"`
	VendorID     uint16 `toml:"vendor_id"`
	ProductID    uint16 `toml:"product_id"`
	Version      uint16 `toml:"version"`
}

// HIDConfig はレポート送信のタイミング
type HIDConfig struct {
	KeyDelay     time.Duration `toml:"key_delay"`
	SettleDelay  time.Duration `toml:"settle_delay"`
	TickInterval time.Duration `toml:"tick_interval"`
}

// TransportConfig はホストへの送信経路の設定
type TransportConfig struct {
	Type       string `toml:"type"`
	GadgetPath string `toml:"gadget_path"`
	SerialPort string `toml:"serial_port"`
	SerialBaud int    `toml:"serial_baud"`
	UinputPath string `toml:"uinput_path"`
	HCIDevice  string `toml:"hci_device"`
}

// SensorConfig はジェスチャーセンサーの設定
type SensorConfig struct {
	Type           string        `toml:"type"`
	SerialPort     string        `toml:"serial_port"`
	SerialBaud     int           `toml:"serial_baud"`
	MouseDevice    string        `toml:"mouse_device"`
	SwipeThreshold int32         `toml:"swipe_threshold"`
	RetryInterval  time.Duration `toml:"retry_interval"`
}

// ButtonsConfig は物理ボタンの設定
// evdevではキーコード、hookではフックが報告するRawcodeを指定する
type ButtonsConfig struct {
	Type           string `toml:"type"`
	KeyboardDevice string `toml:"keyboard_device"`
	PanelKey       int    `toml:"panel_key"`
	ButtonAKey     int    `toml:"button_a_key"`
	ButtonBKey     int    `toml:"button_b_key"`
}

// LogConfig はログの設定
type LogConfig struct {
	Level string `toml:"level"`
}

// DefaultConfig はデフォルト設定を返す
func DefaultConfig() *Config {
	return &Config{
		Device: DeviceConfig{
			Name:         "GestureHid",
			Manufacturer: "M5StickC",
			BatteryLevel: 7,
			VendorSource: 0x02,
			VendorID:     0xe502,
			ProductID:    0xa111,
			Version:      0x0210,
		},
		HID: HIDConfig{
			KeyDelay:     20 * time.Millisecond,
			SettleDelay:  100 * time.Millisecond,
			TickInterval: time.Millisecond,
		},
		Transport: TransportConfig{
			Type:       TransportBlueZ,
			GadgetPath: "/dev/hidg0",
			SerialPort: "/dev/ttyUSB0",
			SerialBaud: 115200,
			UinputPath: "/dev/uinput",
			HCIDevice:  "hci0",
		},
		Sensor: SensorConfig{
			Type:           SensorSerial,
			SerialPort:     "/dev/ttyACM0",
			SerialBaud:     9600,
			MouseDevice:    "",
			SwipeThreshold: 60,
			RetryInterval:  500 * time.Millisecond,
		},
		Buttons: ButtonsConfig{
			Type:       ButtonsEvdev,
			PanelKey:   67, // F9
			ButtonAKey: 68, // F10
			ButtonBKey: 87, // F11
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate は種類の指定などを確認する
func (c *Config) Validate() error {
	switch c.Transport.Type {
	case TransportBlueZ, TransportGadget, TransportSerial, TransportUinput:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTransport, c.Transport.Type)
	}
	switch c.Sensor.Type {
	case SensorSerial, SensorWebSocket, SensorMouse:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSensor, c.Sensor.Type)
	}
	switch c.Buttons.Type {
	case ButtonsEvdev, ButtonsHook, ButtonsNone:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownButtons, c.Buttons.Type)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("ログレベルが不正です: %w", err)
	}
	return nil
}

// LogLevel は設定されたログレベルを返す。解釈できなければInfo
func (c *Config) LogLevel() logrus.Level {
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// GetDefaultConfigDir は設定ファイルを置くディレクトリを返す
func GetDefaultConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "gesture-hid"), nil
}

// LoadConfig は設定ファイルから設定を読み込む
func LoadConfig(configPath string) (*Config, error) {
	// デフォルト設定を用意
	config := DefaultConfig()

	// ファイルが存在しない場合はデフォルト設定を保存して返す
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := SaveConfig(configPath, config); err != nil {
			return config, err
		}
		return config, nil
	}

	// 設定ファイルの読み込み
	md, err := toml.DecodeFile(configPath, config)
	if err != nil {
		return config, fmt.Errorf("設定ファイル%sを解釈できません: %w", configPath, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return config, fmt.Errorf("設定ファイルに不明な項目があります: %v", undecoded)
	}
	return config, config.Validate()
}

// SaveConfig は設定をTOMLファイルに保存する
func SaveConfig(configPath string, config *Config) error {
	// 設定ディレクトリの作成
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	// ファイルを開く（なければ作成）
	f, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer f.Close()

	// TOML形式でエンコードして書き込み
	encoder := toml.NewEncoder(f)
	return encoder.Encode(config)
}
