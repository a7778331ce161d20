package macro

import (
	"fmt"
	"strings"
)

// InputEvent は分類済みの離散的な入力（ジェスチャーまたはボタン押下）を表す
// マクロ検索のキーとして使われる
type InputEvent int

const (
	// EventNone は「バインドなし」を示す番兵値で、検索で一致することはない
	EventNone InputEvent = iota
	EventRight
	EventLeft
	EventUp
	EventDown
	EventForward
	EventBackward
	EventClockwise
	EventAntiClockwise
	EventWave
	EventButtonA
	EventButtonB
)

var eventNames = [...]string{
	EventNone:          "None",
	EventRight:         "Right",
	EventLeft:          "Left",
	EventUp:            "Up",
	EventDown:          "Down",
	EventForward:       "Forward",
	EventBackward:      "Backward",
	EventClockwise:     "Clockwise",
	EventAntiClockwise: "AntiClockwise",
	EventWave:          "Wave",
	EventButtonA:       "ButtonA",
	EventButtonB:       "ButtonB",
}

// 設定ファイルで使える別名（正規化済みの小文字）
var eventAliases = map[string]InputEvent{
	"btna": EventButtonA,
	"btnb": EventButtonB,
	"a":    EventButtonA,
	"b":    EventButtonB,
}

func (e InputEvent) String() string {
	if e < 0 || int(e) >= len(eventNames) {
		return fmt.Sprintf("InputEvent(%d)", int(e))
	}
	return eventNames[e]
}

// Valid はNone以外の定義済みイベントかどうかを返す
func (e InputEvent) Valid() bool {
	return e > EventNone && int(e) < len(eventNames)
}

// ParseInputEvent はイベント名を解析する
// 大文字小文字、ハイフン、アンダースコア、空白は区別しない
func ParseInputEvent(name string) (InputEvent, error) {
	key := normalizeName(name)
	for i, n := range eventNames {
		if normalizeName(n) == key {
			return InputEvent(i), nil
		}
	}
	if ev, ok := eventAliases[key]; ok {
		return ev, nil
	}
	return EventNone, fmt.Errorf("不明な入力イベントです: %q", name)
}

func (e InputEvent) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

func (e *InputEvent) UnmarshalText(text []byte) error {
	ev, err := ParseInputEvent(string(text))
	if err != nil {
		return err
	}
	*e = ev
	return nil
}

func normalizeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', '_', ' ':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(s)))
}
