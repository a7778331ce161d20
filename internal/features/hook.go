package features

import (
	"sync"

	hook "github.com/robotn/gohook"
)

// HookButtons はデスクトップのグローバルキーフックでボタンを再現する
// 実機がない環境での動作確認用
type HookButtons struct {
	mu      sync.Mutex
	codes   map[Button]uint16
	held    map[uint16]bool
	pending map[Button]bool
	done    chan struct{}
}

// StartHookButtons はキーフックを開始する
// codesにはフックが報告するRawcodeを指定する
func StartHookButtons(codes map[Button]uint16) *HookButtons {
	b := newHookButtons(codes)
	events := hook.Start()
	go func() {
		defer close(b.done)
		for ev := range events {
			b.handle(ev)
		}
	}()
	return b
}

func newHookButtons(codes map[Button]uint16) *HookButtons {
	return &HookButtons{
		codes:   codes,
		held:    make(map[uint16]bool),
		pending: make(map[Button]bool),
		done:    make(chan struct{}),
	}
}

// handle はフックのイベントを押下フラグに変換する
// オートリピートで届く KeyHold は離されるまで無視する
func (b *HookButtons) handle(ev hook.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch ev.Kind {
	case hook.KeyHold:
		if b.held[ev.Rawcode] {
			return
		}
		b.held[ev.Rawcode] = true
		for btn, code := range b.codes {
			if code == ev.Rawcode {
				b.pending[btn] = true
			}
		}
	case hook.KeyUp:
		delete(b.held, ev.Rawcode)
	}
}

func (b *HookButtons) WasPressed(btn Button) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	pressed := b.pending[btn]
	b.pending[btn] = false
	return pressed
}

// Close はキーフックを終了する
func (b *HookButtons) Close() error {
	hook.End()
	return nil
}
