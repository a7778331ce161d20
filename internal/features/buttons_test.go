package features

import (
	"errors"
	"testing"

	hook "github.com/robotn/gohook"
)

type fakeKeyboard struct {
	keys   []int
	err    error
	closed bool
}

func (k *fakeKeyboard) PressedKeys() ([]int, error) { return k.keys, k.err }
func (k *fakeKeyboard) Close() error                { k.closed = true; return nil }

func TestKeyButtonsEdge(t *testing.T) {
	kb := &fakeKeyboard{}
	b := NewKeyButtons(kb, map[Button]int{ButtonPanel: 30, ButtonA: 31})

	steps := []struct {
		keys []int
		want bool
	}{
		{nil, false},
		{[]int{30}, true},
		{[]int{30}, false}, // 押しっぱなし
		{[]int{30, 31}, false},
		{nil, false},
		{[]int{30}, true},
	}
	for i, s := range steps {
		kb.keys = s.keys
		if got := b.WasPressed(ButtonPanel); got != s.want {
			t.Errorf("step %d: WasPressed(Panel) = %v, want %v", i, got, s.want)
		}
	}
}

func TestKeyButtonsUnboundAndErrors(t *testing.T) {
	kb := &fakeKeyboard{keys: []int{30}}
	b := NewKeyButtons(kb, map[Button]int{ButtonPanel: 30})

	if b.WasPressed(ButtonB) {
		t.Error("unbound button should never be pressed")
	}

	kb.err = errors.New("read failed")
	if b.WasPressed(ButtonPanel) {
		t.Error("read error should report not pressed")
	}
	kb.err = nil
	if !b.WasPressed(ButtonPanel) {
		t.Error("press after a read error should be detected")
	}
}

func TestKeyButtonsSetKeyboard(t *testing.T) {
	old := &fakeKeyboard{keys: []int{30}}
	b := NewKeyButtons(old, map[Button]int{ButtonPanel: 30})
	b.WasPressed(ButtonPanel)

	next := &fakeKeyboard{keys: []int{30}}
	b.SetKeyboard(next)
	if !old.closed {
		t.Error("replaced keyboard should be closed")
	}
	if !b.WasPressed(ButtonPanel) {
		t.Error("held state should be cleared when the keyboard changes")
	}

	b.SetKeyboard(nil)
	if b.WasPressed(ButtonPanel) {
		t.Error("no keyboard should report not pressed")
	}
	if err := b.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestHookButtonsHandle(t *testing.T) {
	b := newHookButtons(map[Button]uint16{ButtonA: 0x41, ButtonB: 0x42})

	b.handle(hook.Event{Kind: hook.KeyHold, Rawcode: 0x41})
	b.handle(hook.Event{Kind: hook.KeyHold, Rawcode: 0x41}) // リピート
	if !b.WasPressed(ButtonA) {
		t.Fatal("KeyHold should register a press")
	}
	if b.WasPressed(ButtonA) {
		t.Error("a press should be consumed once")
	}

	b.handle(hook.Event{Kind: hook.KeyHold, Rawcode: 0x41})
	if b.WasPressed(ButtonA) {
		t.Error("repeat before KeyUp should not register")
	}

	b.handle(hook.Event{Kind: hook.KeyUp, Rawcode: 0x41})
	b.handle(hook.Event{Kind: hook.KeyHold, Rawcode: 0x41})
	if !b.WasPressed(ButtonA) {
		t.Error("press after release should register")
	}
	if b.WasPressed(ButtonB) {
		t.Error("ButtonB was never pressed")
	}
}

func TestButtonString(t *testing.T) {
	tests := map[Button]string{ButtonPanel: "Panel", ButtonA: "A", ButtonB: "B", Button(9): "Unknown"}
	for b, want := range tests {
		if got := b.String(); got != want {
			t.Errorf("Button(%d).String() = %q, want %q", int(b), got, want)
		}
	}
}
