package macro

import "github.com/char5742/gesture-hid/internal/scancode"

// HIDキーボードの使用コード（Keyboard/Keypad Page）
const (
	usageEscape     = 0x29
	usageF5         = 0x3e
	usagePageUp     = 0x4b
	usagePageDown   = 0x4e
	usageRightArrow = 0x4f
	usageLeftArrow  = 0x50
)

// DefaultCatalog は組み込みのパネル一覧を返す
// Desktop, PowerPoint, Zoom, None の4パネル
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(
		Panel{
			Title: "Desktop",
			Macros: []Macro{
				{EventLeft, "デスクトップ切替(←)", MappedKey{usageLeftArrow, ModWin | ModCtrl}},
				{EventRight, "デスクトップ切替(→)", MappedKey{usageRightArrow, ModWin | ModCtrl}},
				{EventButtonA, "デスクトップ表示", MappedKey{scancode.Usage('d'), ModWin}},
			},
		},
		Panel{
			Title: "PowerPoint",
			Macros: []Macro{
				{EventLeft, "前ページ", MappedKey{usagePageUp, 0}},
				{EventRight, "次ページ", MappedKey{usagePageDown, 0}},
				{EventButtonA, "スライドショー開始", MappedKey{usageF5, 0}},
				{EventButtonB, "スライドショー終了", MappedKey{usageEscape, 0}},
			},
		},
		Panel{
			Title: "Zoom",
			Macros: []Macro{
				{EventWave, "ミュート", MappedKey{scancode.Usage('a'), ModAlt}},
				{EventButtonA, "手を挙げる", MappedKey{scancode.Usage('y'), ModAlt}},
			},
		},
		Panel{Title: "None"},
	)
	if err != nil {
		// 組み込みデータは常に妥当
		panic(err)
	}
	return c
}
