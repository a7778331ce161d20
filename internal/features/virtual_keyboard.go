package features

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/char5742/gesture-hid/internal/consts"
	"github.com/char5742/gesture-hid/internal/types"
	"github.com/char5742/gesture-hid/internal/utils"
)

// uinputで作成した仮想キーボードを表現するインターフェース
type VirtualKeyboard interface {
	// キーコードの押下(true)/解放(false)をまとめて送り、最後に同期イベントを送る
	SendKeys(changes []KeyChange) error
	io.Closer
}

// KeyChange は1つのキーの状態変化
type KeyChange struct {
	Code    uint16
	Pressed bool
}

type virtualKeyboard struct {
	name       []byte
	deviceFile *os.File
}

// 新しい仮想キーボードデバイスを作成する
func CreateVirtualKeyboard(path string, name []byte, vendor, product uint16) (VirtualKeyboard, error) {
	fd, err := createKeyboardDevice(path, name, vendor, product)
	if err != nil {
		return nil, err
	}
	return &virtualKeyboard{name: name, deviceFile: fd}, nil
}

func (vk *virtualKeyboard) Close() error {
	_ = releaseDevice(vk.deviceFile)
	return vk.deviceFile.Close()
}

func createKeyboardDevice(path string, name []byte, vendor, product uint16) (*os.File, error) {
	deviceFile, err := createDeviceFile(path)
	if err != nil {
		return nil, fmt.Errorf("仮想キーボードを作成できませんでした: %w", err)
	}

	// キー入力イベント(EV_KEY)を登録する
	if err := registerDevice(deviceFile, uintptr(consts.Key)); err != nil {
		return nil, fmt.Errorf("キー入力イベント(EV_KEY)の登録に失敗しました: %w", err)
	}

	// HID使用コードから変換できるすべてのキーを登録する
	for _, code := range keycodesInUse() {
		if err := utils.IOCtl(deviceFile, consts.SetKeyBit, uintptr(code)); err != nil {
			_ = deviceFile.Close()
			return nil, fmt.Errorf("キーの登録に失敗しました %v: %w", code, err)
		}
	}

	userDev := types.UserDev{
		Name: toUinputName(name),
		ID: types.InputID{
			Bustype: consts.BusBluetooth,
			Vendor:  vendor,
			Product: product,
			Version: 1,
		},
	}

	fd, err := createUsbDevice(deviceFile, userDev)
	if err != nil {
		return nil, fmt.Errorf("仮想デバイスの作成に失敗しました: %w", err)
	}
	return fd, nil
}

func (vk *virtualKeyboard) SendKeys(changes []KeyChange) error {
	events := make([]types.Event, 0, len(changes)+1)
	for _, c := range changes {
		value := int32(consts.KeyReleased)
		if c.Pressed {
			value = consts.KeyPressed
		}
		events = append(events, types.Event{Type: consts.Key, Code: c.Code, Value: value})
	}
	events = append(events, types.Event{Type: consts.Syn, Code: consts.SynReport, Value: 0})
	return writeEvents(vk.deviceFile, events)
}

// デバイスファイルを開く
func createDeviceFile(path string) (*os.File, error) {
	deviceFile, err := os.OpenFile(path, syscall.O_WRONLY|syscall.O_NONBLOCK, 0660)
	if err != nil {
		return nil, fmt.Errorf("デバイスファイルを開くのに失敗しました: %w", err)
	}
	return deviceFile, nil
}

// デバイスを解放する
func releaseDevice(deviceFile *os.File) error {
	return utils.IOCtl(deviceFile, consts.DevDestroy, uintptr(0))
}

// イベント種別を登録する。失敗した場合はファイルを閉じる
func registerDevice(deviceFile *os.File, evType uintptr) error {
	if err := utils.IOCtl(deviceFile, consts.SetEvBit, evType); err != nil {
		_ = releaseDevice(deviceFile)
		_ = deviceFile.Close()
		return err
	}
	return nil
}

// uinput_user_dev を書き込んでデバイスを作成する
func createUsbDevice(deviceFile *os.File, dev types.UserDev) (*os.File, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, dev); err != nil {
		_ = deviceFile.Close()
		return nil, fmt.Errorf("ユーザーデバイスバッファの書き込みに失敗しました: %w", err)
	}
	if _, err := deviceFile.Write(buf.Bytes()); err != nil {
		_ = deviceFile.Close()
		return nil, fmt.Errorf("デバイス構造体をデバイスファイルに書き込むのに失敗しました: %w", err)
	}
	if err := utils.IOCtl(deviceFile, consts.DevCreate, uintptr(0)); err != nil {
		_ = deviceFile.Close()
		return nil, fmt.Errorf("デバイスの作成に失敗しました: %w", err)
	}
	return deviceFile, nil
}

// イベントを書き込む
func writeEvents(w io.Writer, events []types.Event) error {
	buf := new(bytes.Buffer)
	for _, ev := range events {
		if err := binary.Write(buf, binary.LittleEndian, ev); err != nil {
			return fmt.Errorf("イベントをバッファに書き込むのに失敗しました: %w", err)
		}
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("イベントの書き込みに失敗しました: %w", err)
	}
	return nil
}

// 名前をuinput用の固定長配列に変換する
func toUinputName(name []byte) [consts.MaxNameSize]byte {
	var fixedSizeName [consts.MaxNameSize]byte
	copy(fixedSizeName[:], name)
	return fixedSizeName
}
