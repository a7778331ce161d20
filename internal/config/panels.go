package config

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/char5742/gesture-hid/internal/macro"
	"github.com/char5742/gesture-hid/internal/scancode"
)

// PanelConfig は設定ファイルで定義するパネル
type PanelConfig struct {
	Title  string        `toml:"title"`
	Macros []MacroConfig `toml:"macros"`
}

// MacroConfig は設定ファイルで定義するマクロ
// text, key/char, keys のうちちょうど1つを指定する
type MacroConfig struct {
	Event     string   `toml:"event"`
	Label     string   `toml:"label"`
	Text      string   `toml:"text,omitempty"`
	Key       int      `toml:"key,omitempty"`
	Char      string   `toml:"char,omitempty"`
	Keys      []int    `toml:"keys,omitempty"`
	Modifiers []string `toml:"modifiers,omitempty"`
}

// Catalog は設定からカタログを作る。パネルの定義がなければ組み込みのカタログを使う
func (c *Config) Catalog() (*macro.Catalog, error) {
	if len(c.Panels) == 0 {
		return macro.DefaultCatalog(), nil
	}
	return BuildCatalog(c.Panels)
}

// BuildCatalog はパネル定義からカタログを作る
func BuildCatalog(panels []PanelConfig) (*macro.Catalog, error) {
	built := make([]macro.Panel, 0, len(panels))
	for _, p := range panels {
		panel := macro.Panel{Title: p.Title}
		for i, m := range p.Macros {
			mc, err := m.build()
			if err != nil {
				return nil, fmt.Errorf("パネル %q のマクロ #%d: %w", p.Title, i, err)
			}
			panel.Macros = append(panel.Macros, mc)
		}
		built = append(built, panel)
	}
	return macro.NewCatalog(built...)
}

func (m MacroConfig) build() (macro.Macro, error) {
	event, err := macro.ParseInputEvent(m.Event)
	if err != nil {
		return macro.Macro{}, err
	}
	mod, err := macro.ParseModifiers(m.Modifiers)
	if err != nil {
		return macro.Macro{}, err
	}

	kinds := 0
	for _, set := range []bool{m.Text != "", m.Key != 0 || m.Char != "", len(m.Keys) > 0} {
		if set {
			kinds++
		}
	}
	if kinds != 1 {
		return macro.Macro{}, errors.New("text, key/char, keys のうちちょうど1つを指定してください")
	}

	var action macro.Action
	switch {
	case m.Text != "":
		if mod != 0 {
			return macro.Macro{}, errors.New("textには修飾キーを指定できません")
		}
		action = macro.Text{Text: m.Text}
	case m.Key != 0 || m.Char != "":
		usage, err := m.usage()
		if err != nil {
			return macro.Macro{}, err
		}
		action = macro.MappedKey{Usage: usage, Modifier: mod}
	default:
		usages := make([]byte, 0, len(m.Keys))
		for _, k := range m.Keys {
			u, err := toUsage(k)
			if err != nil {
				return macro.Macro{}, err
			}
			usages = append(usages, u)
		}
		ks, err := macro.NewKeySet(mod, usages...)
		if err != nil {
			return macro.Macro{}, err
		}
		action = ks
	}
	return macro.Macro{Event: event, Label: m.Label, Action: action}, nil
}

func (m MacroConfig) usage() (byte, error) {
	if m.Key != 0 && m.Char != "" {
		return 0, errors.New("keyとcharは同時に指定できません")
	}
	if m.Key != 0 {
		return toUsage(m.Key)
	}
	r, size := utf8.DecodeRuneInString(m.Char)
	if size != len(m.Char) {
		return 0, fmt.Errorf("charには1文字だけ指定してください: %q", m.Char)
	}
	usage := scancode.Usage(r)
	if usage == 0 {
		return 0, fmt.Errorf("文字 %q に対応するキーがありません", m.Char)
	}
	return usage, nil
}

func toUsage(k int) (byte, error) {
	if k <= 0 || k > 0xff {
		return 0, fmt.Errorf("使用コードが範囲外です: %d", k)
	}
	return byte(k), nil
}

// ExportPanels はカタログを設定ファイルの形式に変換する
func ExportPanels(c *macro.Catalog) []PanelConfig {
	var out []PanelConfig
	for _, p := range c.Panels() {
		pc := PanelConfig{Title: p.Title, Macros: []MacroConfig{}}
		for _, m := range p.Macros {
			mc := MacroConfig{Event: m.Event.String(), Label: m.Label}
			switch a := m.Action.(type) {
			case macro.Text:
				mc.Text = a.Text
			case macro.MappedKey:
				mc.Key = int(a.Usage)
				mc.Modifiers = a.Modifier.Names()
			case macro.KeySet:
				for _, u := range a.Usages {
					mc.Keys = append(mc.Keys, int(u))
				}
				mc.Modifiers = a.Modifier.Names()
			}
			pc.Macros = append(pc.Macros, mc)
		}
		out = append(out, pc)
	}
	return out
}
