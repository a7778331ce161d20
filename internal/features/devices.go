package features

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

const inputByID = "/dev/input/by-id"

type Device struct {
	Name string
	Path string
	Type DeviceType
}

// デバイスタイプを表す列挙型
type DeviceType int

const (
	DeviceTypeKeyboard DeviceType = iota
	DeviceTypeMouse
)

func (t DeviceType) String() string {
	if t == DeviceTypeMouse {
		return "mouse"
	}
	return "keyboard"
}

// DeviceEventType はデバイスイベントの種類を表す
type DeviceEventType int

const (
	DeviceAdded DeviceEventType = iota
	DeviceRemoved
	DeviceChanged
)

// DeviceEvent はデバイスの変更イベントを表す
type DeviceEvent struct {
	Type   DeviceEventType
	Device Device
}

// DeviceCallback はデバイスイベント発生時に呼び出されるコールバック関数の型
type DeviceCallback func(event DeviceEvent)

// ScanDevices は現在接続されているキーボードとマウスを列挙する
func ScanDevices() ([]Device, error) {
	return scanDir(inputByID)
}

func scanDir(dir string) ([]Device, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var devices []Device
	for _, entry := range entries {
		// eventが含まれない場合はスキップ
		if !strings.Contains(entry.Name(), "event") {
			continue
		}
		fullPath := filepath.Join(dir, entry.Name())
		realPath, err := os.Readlink(fullPath)
		if err != nil {
			continue
		}

		// 絶対パスを構築
		absPath := realPath
		if !filepath.IsAbs(realPath) {
			absPath = filepath.Join(filepath.Dir(dir), filepath.Base(realPath))
		}

		switch {
		case strings.Contains(entry.Name(), "kbd"):
			devices = append(devices, Device{Name: entry.Name(), Path: absPath, Type: DeviceTypeKeyboard})
		case strings.Contains(entry.Name(), "mouse"):
			devices = append(devices, Device{Name: entry.Name(), Path: absPath, Type: DeviceTypeMouse})
		}
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].Name < devices[j].Name })
	return devices, nil
}

// FindDevice は優先デバイス名に一致するものを、なければ最初に見つかった同種のデバイスを返す
func FindDevice(devices []Device, typ DeviceType, preferred string) (Device, bool) {
	var first *Device
	for i := range devices {
		d := &devices[i]
		if d.Type != typ {
			continue
		}
		if preferred != "" && (d.Name == preferred || d.Path == preferred) {
			return *d, true
		}
		if first == nil {
			first = d
		}
	}
	if first == nil {
		return Device{}, false
	}
	return *first, true
}

// DeviceMonitor はデバイスの接続状態を監視する構造体
type DeviceMonitor struct {
	watcher   *fsnotify.Watcher
	callbacks []DeviceCallback
	devices   map[string]Device // パスをキーにしたデバイスマップ
	mutex     sync.RWMutex
	stopChan  chan struct{}
	scan      func() ([]Device, error)
	log       *logrus.Logger
	isRunning bool
}

// NewDeviceMonitor は新しいDeviceMonitorを作成する
func NewDeviceMonitor(logger *logrus.Logger) (*DeviceMonitor, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	dm := newDeviceMonitor(ScanDevices, logger)
	dm.watcher = watcher
	return dm, nil
}

func newDeviceMonitor(scan func() ([]Device, error), logger *logrus.Logger) *DeviceMonitor {
	return &DeviceMonitor{
		devices:  make(map[string]Device),
		stopChan: make(chan struct{}),
		scan:     scan,
		log:      logger,
	}
}

// Start はデバイスの監視を開始する
func (dm *DeviceMonitor) Start() error {
	if dm.isRunning {
		return nil
	}

	dm.log.Info("デバイスモニターを開始します")
	dm.isRunning = true

	for _, dir := range []string{"/dev/input", inputByID} {
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		if err := dm.watcher.Add(dir); err != nil {
			dm.log.WithError(err).WithField("dir", dir).Warn("ディレクトリの監視に失敗しました")
		}
	}

	// 初期デバイス一覧を取得
	dm.Rescan()

	go dm.watchEvents()
	return nil
}

// Stop はデバイスの監視を停止する
func (dm *DeviceMonitor) Stop() {
	if !dm.isRunning {
		return
	}
	dm.log.Info("デバイスモニターを停止します")
	close(dm.stopChan)
	_ = dm.watcher.Close()
	dm.isRunning = false
}

// RegisterCallback はデバイスイベントのコールバック関数を登録する
func (dm *DeviceMonitor) RegisterCallback(callback DeviceCallback) {
	dm.mutex.Lock()
	defer dm.mutex.Unlock()

	dm.callbacks = append(dm.callbacks, callback)
}

// Devices は現在接続されているデバイスのスナップショットを返す
func (dm *DeviceMonitor) Devices() []Device {
	dm.mutex.RLock()
	defer dm.mutex.RUnlock()

	devices := make([]Device, 0, len(dm.devices))
	for _, d := range dm.devices {
		devices = append(devices, d)
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].Name < devices[j].Name })
	return devices
}

// Rescan はデバイス一覧を再スキャンして差分を通知する
func (dm *DeviceMonitor) Rescan() {
	devices, err := dm.scan()
	if err != nil {
		dm.log.WithError(err).Warn("デバイススキャンに失敗しました")
		return
	}
	dm.updateDeviceList(devices)
}

// updateDeviceList は現在のデバイス一覧を更新し、変更があれば通知する
func (dm *DeviceMonitor) updateDeviceList(newDevices []Device) {
	var events []DeviceEvent

	dm.mutex.Lock()
	seen := make(map[string]bool, len(newDevices))
	for _, d := range newDevices {
		seen[d.Path] = true
		old, exists := dm.devices[d.Path]
		switch {
		case !exists:
			events = append(events, DeviceEvent{Type: DeviceAdded, Device: d})
		case old != d:
			events = append(events, DeviceEvent{Type: DeviceChanged, Device: d})
		default:
			continue
		}
		dm.devices[d.Path] = d
	}
	for path, d := range dm.devices {
		if !seen[path] {
			events = append(events, DeviceEvent{Type: DeviceRemoved, Device: d})
			delete(dm.devices, path)
		}
	}
	callbacks := append([]DeviceCallback(nil), dm.callbacks...)
	dm.mutex.Unlock()

	// ロックを解放した状態でコールバックを呼び出す
	for _, ev := range events {
		dm.log.WithFields(logrus.Fields{
			"name": ev.Device.Name,
			"path": ev.Device.Path,
			"type": ev.Type,
		}).Info("デバイスの変更を検出しました")
		for _, cb := range callbacks {
			cb(ev)
		}
	}
}

// watchEvents はfsnotifyのイベントを監視する
// 連続するイベントはまとめて1回のリスキャンにする
func (dm *DeviceMonitor) watchEvents() {
	const debounce = 500 * time.Millisecond
	timer := time.NewTimer(debounce)
	timer.Stop()
	pending := false

	for {
		select {
		case <-dm.stopChan:
			return

		case <-timer.C:
			if pending {
				pending = false
				dm.Rescan()
			}

		case event, ok := <-dm.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Remove) != 0 && !pending {
				pending = true
				timer.Reset(debounce)
			}

		case err, ok := <-dm.watcher.Errors:
			if !ok {
				return
			}
			dm.log.WithError(err).Warn("ファイルシステム監視エラー")
		}
	}
}

func (t DeviceEventType) String() string {
	switch t {
	case DeviceAdded:
		return "added"
	case DeviceRemoved:
		return "removed"
	}
	return "changed"
}
