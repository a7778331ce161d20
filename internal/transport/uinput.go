package transport

import (
	"fmt"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/char5742/gesture-hid/internal/features"
	"github.com/char5742/gesture-hid/internal/hid"
)

// Uinput はレポートをローカルの仮想キーボードのキーイベントに変換する
// 実機やホストなしで動作を確かめるためのもので、常に接続済みとして扱う
type Uinput struct {
	mu   sync.Mutex
	kb   features.VirtualKeyboard
	prev hid.Report
	link *hid.LinkState
	log  *logrus.Logger
}

// OpenUinput は仮想キーボードを作成する
func OpenUinput(path string, name string, vendor, product uint16, link *hid.LinkState, logger *logrus.Logger) (*Uinput, error) {
	kb, err := features.CreateVirtualKeyboard(path, []byte(name), vendor, product)
	if err != nil {
		return nil, err
	}
	logger.WithField("path", path).Info("仮想キーボードを作成しました")
	return newUinput(kb, link, logger), nil
}

func newUinput(kb features.VirtualKeyboard, link *hid.LinkState, logger *logrus.Logger) *Uinput {
	link.Connect()
	return &Uinput{kb: kb, link: link, log: logger}
}

func (u *Uinput) SendReport(r hid.Report) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	changes := diffReports(u.prev, r, u.log)
	if len(changes) == 0 {
		return nil
	}
	if err := u.kb.SendKeys(changes); err != nil {
		return fmt.Errorf("仮想キーボードへの送信に失敗しました: %w", err)
	}
	u.prev = r
	return nil
}

func (u *Uinput) Close() error {
	u.link.Disconnect()

	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.prev.IsRelease() {
		_ = u.kb.SendKeys(diffReports(u.prev, hid.ReleaseReport, u.log))
	}
	return u.kb.Close()
}

// diffReports は2つのレポートの差分をキーイベントにする
// 押下は修飾キーを先に、解放は通常キーを先に並べる
func diffReports(prev, next hid.Report, logger *logrus.Logger) []features.KeyChange {
	var changes []features.KeyChange

	modChanges := func(pressed bool) {
		for bit := 0; bit < 8; bit++ {
			was := prev[0]&(1<<bit) != 0
			is := next[0]&(1<<bit) != 0
			if was != is && is == pressed {
				changes = append(changes, features.KeyChange{Code: features.ModifierKeycode(bit), Pressed: pressed})
			}
		}
	}
	keyChanges := func(from, to []byte, pressed bool) {
		for _, usage := range from {
			if slices.Contains(to, usage) {
				continue
			}
			code, ok := features.UsageKeycode(usage)
			if !ok {
				logger.WithField("usage", fmt.Sprintf("%#02x", usage)).Debug("対応するキーコードがありません")
				continue
			}
			changes = append(changes, features.KeyChange{Code: code, Pressed: pressed})
		}
	}

	prevKeys, nextKeys := prev.Keys(), next.Keys()
	keyChanges(prevKeys, nextKeys, false)
	modChanges(false)
	modChanges(true)
	keyChanges(nextKeys, prevKeys, true)
	return changes
}
