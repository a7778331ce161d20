package macro

import (
	"errors"
	"fmt"
	"strings"
)

// MaxKeys は1つのレポートに同時に載せられるキーの最大数
const MaxKeys = 6

// Modifier はHIDキーボードの修飾キーのビットフィールド
// ビット配置はHID標準の修飾バイトに合わせている
type Modifier byte

const (
	ModCtrl   Modifier = 1 << 0 // 左Ctrl
	ModShift  Modifier = 1 << 1 // 左Shift
	ModAlt    Modifier = 1 << 2 // 左Alt
	ModWin    Modifier = 1 << 3 // 左GUI (Windows/Command)
	ModRCtrl  Modifier = 1 << 4
	ModRShift Modifier = 1 << 5
	ModRAlt   Modifier = 1 << 6
	ModRWin   Modifier = 1 << 7
)

var modifierNames = []struct {
	mod   Modifier
	names []string
}{
	{ModCtrl, []string{"ctrl", "lctrl", "control"}},
	{ModShift, []string{"shift", "lshift"}},
	{ModAlt, []string{"alt", "lalt", "option"}},
	{ModWin, []string{"win", "lwin", "gui", "cmd", "meta"}},
	{ModRCtrl, []string{"rctrl"}},
	{ModRShift, []string{"rshift"}},
	{ModRAlt, []string{"ralt", "altgr"}},
	{ModRWin, []string{"rwin", "rgui", "rcmd"}},
}

// ParseModifiers は修飾キー名の一覧をビットフィールドに変換する
func ParseModifiers(names []string) (Modifier, error) {
	var mod Modifier
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		found := false
		for _, m := range modifierNames {
			for _, n := range m.names {
				if n == key {
					mod |= m.mod
					found = true
				}
			}
		}
		if !found {
			return 0, fmt.Errorf("不明な修飾キーです: %q", name)
		}
	}
	return mod, nil
}

// Names はセットされている修飾キーの名前をビット順に返す
func (m Modifier) Names() []string {
	var names []string
	for _, mn := range modifierNames {
		if m&mn.mod != 0 {
			names = append(names, mn.names[0])
		}
	}
	return names
}

func (m Modifier) String() string {
	if m == 0 {
		return "none"
	}
	return strings.Join(m.Names(), "|")
}

// ActionKind はアクションの種類
type ActionKind int

const (
	KindText ActionKind = iota
	KindMappedKey
	KindKeySet
)

func (k ActionKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindMappedKey:
		return "key"
	case KindKeySet:
		return "keyset"
	}
	return fmt.Sprintf("ActionKind(%d)", int(k))
}

// Action はマクロが発火したときのキーストローク動作
// Text, MappedKey, KeySet のいずれか1つだけを取る直和型
type Action interface {
	Kind() ActionKind
	isAction()
}

// Text は文字列を1文字ずつ打鍵するアクション
type Text struct {
	Text string
}

// MappedKey は修飾キー付きの単一キー
type MappedKey struct {
	Usage    byte
	Modifier Modifier
}

// KeySet は最大6キーの同時押し（コード）
type KeySet struct {
	Modifier Modifier
	Usages   []byte
}

func (Text) Kind() ActionKind      { return KindText }
func (MappedKey) Kind() ActionKind { return KindMappedKey }
func (KeySet) Kind() ActionKind    { return KindKeySet }

func (Text) isAction()      {}
func (MappedKey) isAction() {}
func (KeySet) isAction()    {}

var ErrTooManyKeys = errors.New("同時押しできるキーは6個までです")

// NewKeySet は同時押しアクションを作成する
func NewKeySet(mod Modifier, usages ...byte) (KeySet, error) {
	if len(usages) > MaxKeys {
		return KeySet{}, fmt.Errorf("%w: %d個指定されました", ErrTooManyKeys, len(usages))
	}
	keys := make([]byte, len(usages))
	copy(keys, usages)
	return KeySet{Modifier: mod, Usages: keys}, nil
}
