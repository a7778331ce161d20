package features

import (
	"slices"
	"sync"
)

// Button はデバイスの物理ボタン
type Button int

const (
	ButtonPanel Button = iota // パネル切替
	ButtonA
	ButtonB
)

func (b Button) String() string {
	switch b {
	case ButtonPanel:
		return "Panel"
	case ButtonA:
		return "A"
	case ButtonB:
		return "B"
	}
	return "Unknown"
}

// Buttons はボタンの押下をエッジで検出する
// 押しっぱなしでも1回の押下につき1度だけtrueを返す
type Buttons interface {
	WasPressed(b Button) bool
}

// NoButtons はボタンを持たない構成で使う
type NoButtons struct{}

func (NoButtons) WasPressed(Button) bool { return false }

// KeyButtons はキーボードのキーをボタンとして扱う
type KeyButtons struct {
	mu       sync.Mutex
	keyboard Keyboard
	codes    map[Button]int
	held     map[Button]bool
}

// NewKeyButtons はボタンとキーコードの対応を指定して作成する
func NewKeyButtons(keyboard Keyboard, codes map[Button]int) *KeyButtons {
	return &KeyButtons{
		keyboard: keyboard,
		codes:    codes,
		held:     make(map[Button]bool),
	}
}

// SetKeyboard は監視するキーボードを差し替える（ホットプラグ時）
// nilを渡すとキーボードなしとして扱う
func (b *KeyButtons) SetKeyboard(keyboard Keyboard) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.keyboard != nil {
		_ = b.keyboard.Close()
	}
	b.keyboard = keyboard
	clear(b.held)
}

func (b *KeyButtons) WasPressed(btn Button) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	code, ok := b.codes[btn]
	if !ok || b.keyboard == nil {
		return false
	}

	keys, err := b.keyboard.PressedKeys()
	if err != nil {
		b.held[btn] = false
		return false
	}

	down := slices.Contains(keys, code)
	pressed := down && !b.held[btn]
	b.held[btn] = down
	return pressed
}

// Close はキーボードを閉じる
func (b *KeyButtons) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.keyboard == nil {
		return nil
	}
	err := b.keyboard.Close()
	b.keyboard = nil
	return err
}
