package features

import (
	"fmt"
	"os"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/char5742/gesture-hid/internal/consts"
)

// キーボードの押下状態を読み取るインターフェース
type Keyboard interface {
	// 現在押されているキーコードの一覧を返す
	PressedKeys() ([]int, error)
	Close() error
}

type evdevKeyboard struct {
	*os.File
}

// 監視するデバイスのパスを指定してキーボードを作成する
func CreateKeyboard(path string) (Keyboard, error) {
	// デバイスを読み取り、非ブロッキングモードで開く
	f, err := os.OpenFile(path, syscall.O_RDONLY|syscall.O_NONBLOCK, 0660)
	if err != nil {
		return nil, fmt.Errorf("デバイスファイルを開くのに失敗しました: %w", err)
	}
	return &evdevKeyboard{f}, nil
}

func (k *evdevKeyboard) PressedKeys() ([]int, error) {
	keyBits := make([]byte, (consts.KeyMax+1)/8)

	_, _, errno := unix.Syscall(
		unix.SYS_IOCTL,
		k.Fd(),
		uintptr(consts.EVIOCGKEY),
		uintptr(unsafe.Pointer(&keyBits[0])),
	)
	if errno != 0 {
		return nil, errno
	}
	return decodeKeyBits(keyBits), nil
}

// decodeKeyBits はEVIOCGKEYのビットマップを押下中のキーコードに変換する
func decodeKeyBits(keyBits []byte) []int {
	var pressed []int
	for keyCode := 0; keyCode < len(keyBits)*8; keyCode++ {
		if keyBits[keyCode/8]&(1<<(keyCode%8)) != 0 {
			pressed = append(pressed, keyCode)
		}
	}
	return pressed
}
