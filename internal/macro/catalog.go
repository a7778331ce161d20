package macro

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCatalog = errors.New("パネルが1つも定義されていません")
	ErrNoneBinding  = errors.New("Noneイベントにはマクロを割り当てられません")
	ErrPanelIndex   = errors.New("パネル番号が範囲外です")
)

// Macro は1つの入力イベントと1つのアクションの組
type Macro struct {
	Event  InputEvent
	Label  string // 表示用
	Action Action
}

// Panel は名前付きのマクロ一覧
type Panel struct {
	Title  string
	Macros []Macro
}

// Catalog は起動時に一度だけ構築される不変のパネル一覧
type Catalog struct {
	panels []Panel
}

// Duplicate は同一パネル内で同じイベントに複数のマクロが割り当てられていることを表す
type Duplicate struct {
	Panel  int
	Title  string
	Event  InputEvent
	Labels []string
}

// NewCatalog はパネル一覧を検証してカタログを作成する
// 渡されたスライスはコピーされるため、呼び出し側で変更しても影響しない
func NewCatalog(panels ...Panel) (*Catalog, error) {
	if len(panels) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{panels: make([]Panel, len(panels))}
	for i, p := range panels {
		macros := make([]Macro, len(p.Macros))
		for j, m := range p.Macros {
			if err := validateMacro(m); err != nil {
				return nil, fmt.Errorf("パネル %q のマクロ #%d: %w", p.Title, j, err)
			}
			macros[j] = m
		}
		c.panels[i] = Panel{Title: p.Title, Macros: macros}
	}
	return c, nil
}

func validateMacro(m Macro) error {
	if m.Event == EventNone {
		return ErrNoneBinding
	}
	if !m.Event.Valid() {
		return fmt.Errorf("不正なイベントです: %v", m.Event)
	}
	switch a := m.Action.(type) {
	case nil:
		return errors.New("アクションが指定されていません")
	case KeySet:
		if len(a.Usages) > MaxKeys {
			return fmt.Errorf("%w: %d個指定されました", ErrTooManyKeys, len(a.Usages))
		}
	}
	return nil
}

// Len はパネル数を返す
func (c *Catalog) Len() int {
	return len(c.panels)
}

// Panel は指定番号のパネルを返す
func (c *Catalog) Panel(index int) (Panel, error) {
	if index < 0 || index >= len(c.panels) {
		return Panel{}, fmt.Errorf("%w: %d", ErrPanelIndex, index)
	}
	return c.panels[index], nil
}

// Title は指定番号のパネル名を返す。範囲外の場合は空文字列
func (c *Catalog) Title(index int) string {
	if index < 0 || index >= len(c.panels) {
		return ""
	}
	return c.panels[index].Title
}

// Panels はパネル一覧のコピーを返す
func (c *Catalog) Panels() []Panel {
	out := make([]Panel, len(c.panels))
	copy(out, c.panels)
	return out
}

// Resolve は指定パネルからイベントに対応するアクションを探す
// 宣言順に走査して最初に一致したものを返す。割り当てがなければ ok=false
func (c *Catalog) Resolve(panel int, event InputEvent) (action Action, ok bool) {
	if event == EventNone || panel < 0 || panel >= len(c.panels) {
		return nil, false
	}
	for _, m := range c.panels[panel].Macros {
		if m.Event == event {
			return m.Action, true
		}
	}
	return nil, false
}

// Lint は同じイベントに複数割り当てられているマクロを列挙する
// 解決時は先に宣言されたものが優先される
func (c *Catalog) Lint() []Duplicate {
	var dups []Duplicate
	for i, p := range c.panels {
		labels := make(map[InputEvent][]string)
		var order []InputEvent
		for _, m := range p.Macros {
			if _, seen := labels[m.Event]; !seen {
				order = append(order, m.Event)
			}
			labels[m.Event] = append(labels[m.Event], m.Label)
		}
		for _, ev := range order {
			if len(labels[ev]) > 1 {
				dups = append(dups, Duplicate{Panel: i, Title: p.Title, Event: ev, Labels: labels[ev]})
			}
		}
	}
	return dups
}
