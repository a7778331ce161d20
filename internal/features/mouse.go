package features

import (
	"encoding/binary"
	"fmt"
	"os"
	"syscall"

	"github.com/char5742/gesture-hid/internal/consts"
	"github.com/char5742/gesture-hid/internal/types"
	"github.com/char5742/gesture-hid/internal/utils"
)

// マウス入力を扱うインターフェース
type Mouse interface {
	// 前回からの移動量とホイール量を取得する
	GetMotion() (dx int32, dy int32, wheel int32)
	// マウス操作を専有する
	Grab() error
	// マウス操作の専有を解除する
	Release() error
	Close() error
}

type evdevMouse struct {
	file    *os.File
	grabbed bool
}

// 指定されたパスでマウスを作成する
func CreateMouse(path string) (Mouse, error) {
	f, err := os.OpenFile(path, syscall.O_RDWR|syscall.O_NONBLOCK, 0660)
	if err != nil {
		return nil, fmt.Errorf("デバイスファイルを開くのに失敗しました: %w", err)
	}
	return &evdevMouse{file: f}, nil
}

// GetMotion は読み取れるイベントをすべて読んで移動量を合計する
// 非ブロッキングで開いているので、イベントがなければすぐに0を返す
func (m *evdevMouse) GetMotion() (dx int32, dy int32, wheel int32) {
	buf := make([]byte, types.EventSize*16)

	for {
		n, err := m.file.Read(buf)
		if err != nil || n < types.EventSize {
			return dx, dy, wheel
		}
		for off := 0; off+types.EventSize <= n; off += types.EventSize {
			e := decodeEvent(buf[off : off+types.EventSize])
			if e.Type != consts.Rel {
				continue
			}
			switch e.Code {
			case consts.RelX:
				dx += e.Value
			case consts.RelY:
				dy += e.Value
			case consts.RelWheel:
				wheel += e.Value
			}
		}
	}
}

func decodeEvent(buf []byte) types.Event {
	var e types.Event
	e.Time.Sec = int64(binary.LittleEndian.Uint64(buf[0:8]))
	e.Time.Usec = int64(binary.LittleEndian.Uint64(buf[8:16]))
	e.Type = binary.LittleEndian.Uint16(buf[16:18])
	e.Code = binary.LittleEndian.Uint16(buf[18:20])
	e.Value = int32(binary.LittleEndian.Uint32(buf[20:24]))
	return e
}

func (m *evdevMouse) Grab() error {
	if m.grabbed {
		return nil
	}
	if err := utils.IOCtl(m.file, consts.EVIOCGRAB, 1); err != nil {
		return fmt.Errorf("デバイスの専有に失敗しました: %w", err)
	}
	m.grabbed = true
	return nil
}

func (m *evdevMouse) Release() error {
	if !m.grabbed {
		return nil
	}
	if err := utils.IOCtl(m.file, consts.EVIOCGRAB, 0); err != nil {
		return fmt.Errorf("デバイスの専有解除に失敗しました: %w", err)
	}
	m.grabbed = false
	return nil
}

func (m *evdevMouse) Close() error {
	_ = m.Release()
	return m.file.Close()
}
