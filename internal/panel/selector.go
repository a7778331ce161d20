// Package panel は現在のパネルの切り替えと表示を扱う
package panel

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/char5742/gesture-hid/internal/macro"
)

// Display はパネル名を表示する先
type Display interface {
	ShowTitle(title string)
}

// Selector は現在のパネル番号を保持し、パネル切替ボタンで次へ進める
type Selector struct {
	catalog *macro.Catalog
	display Display
	index   atomic.Int32
}

// NewSelector はパネル0から始まるセレクタを作成する
func NewSelector(catalog *macro.Catalog, display Display) *Selector {
	return &Selector{catalog: catalog, display: display}
}

// Current は現在のパネル番号を返す
func (s *Selector) Current() int {
	return int(s.index.Load())
}

// Title は現在のパネル名を返す
func (s *Selector) Title() string {
	return s.catalog.Title(s.Current())
}

// Advance は次のパネルへ進め、末尾の次は0に戻る
// 新しいパネル名を表示して、その番号を返す
func (s *Selector) Advance() int {
	n := int32(s.catalog.Len())
	for {
		cur := s.index.Load()
		next := (cur + 1) % n
		if s.index.CompareAndSwap(cur, next) {
			s.Show()
			return int(next)
		}
	}
}

// Show は現在のパネル名を表示する
func (s *Selector) Show() {
	if s.display != nil {
		s.display.ShowTitle(s.Title())
	}
}

// LogDisplay はパネル名をログに出す表示先
type LogDisplay struct {
	Log *logrus.Logger
}

func (d LogDisplay) ShowTitle(title string) {
	d.Log.WithField("title", title).Info("パネルを切り替えました")
}

// MultiDisplay は複数の表示先に同じパネル名を送る
type MultiDisplay []Display

func (m MultiDisplay) ShowTitle(title string) {
	for _, d := range m {
		d.ShowTitle(title)
	}
}
