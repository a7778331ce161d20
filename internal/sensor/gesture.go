// Package sensor はジェスチャーセンサーとその実装を扱う
package sensor

import (
	"fmt"
	"strings"

	"github.com/char5742/gesture-hid/internal/macro"
)

// Gesture はPAJ7620と同じ分類のジェスチャー
type Gesture int

const (
	GestureNone Gesture = iota
	GestureRight
	GestureLeft
	GestureUp
	GestureDown
	GestureForward
	GestureBackward
	GestureClockwise
	GestureAntiClockwise
	GestureWave
	GestureWaveSlowlyDisorder
	GestureWaveSlowlyLeftRight
	GestureWaveSlowlyUpDown
	GestureWaveSlowlyForwardBackward
)

// センサーが出力する説明文と同じ表記
var gestureNames = [...]string{
	GestureNone:                      "None",
	GestureRight:                     "Right",
	GestureLeft:                      "Left",
	GestureUp:                        "Up",
	GestureDown:                      "Down",
	GestureForward:                   "Forward",
	GestureBackward:                  "Backward",
	GestureClockwise:                 "Clockwise",
	GestureAntiClockwise:             "Anti-Clockwise",
	GestureWave:                      "Wave",
	GestureWaveSlowlyDisorder:        "WaveSlowlyDisorder",
	GestureWaveSlowlyLeftRight:       "WaveSlowlyLeftRight",
	GestureWaveSlowlyUpDown:          "WaveSlowlyUpDown",
	GestureWaveSlowlyForwardBackward: "WaveSlowlyForwardBackward",
}

// ジェスチャーと入力イベントの固定の対応
// ゆっくり振る系のジェスチャーはどのイベントにも対応しない
var gestureEvents = map[Gesture]macro.InputEvent{
	GestureRight:         macro.EventRight,
	GestureLeft:          macro.EventLeft,
	GestureUp:            macro.EventUp,
	GestureDown:          macro.EventDown,
	GestureForward:       macro.EventForward,
	GestureBackward:      macro.EventBackward,
	GestureClockwise:     macro.EventClockwise,
	GestureAntiClockwise: macro.EventAntiClockwise,
	GestureWave:          macro.EventWave,
}

func (g Gesture) String() string {
	if g < 0 || int(g) >= len(gestureNames) {
		return fmt.Sprintf("Gesture(%d)", int(g))
	}
	return gestureNames[g]
}

// Event はジェスチャーに対応する入力イベントを返す。対応がなければEventNone
func (g Gesture) Event() macro.InputEvent {
	return gestureEvents[g]
}

func normalizeGesture(name string) string {
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(name)))
}

// ParseGesture は名前からジェスチャーを得る
// 大文字小文字と区切り文字("-", "_", 空白)は区別しない
func ParseGesture(name string) (Gesture, error) {
	key := normalizeGesture(name)
	for g, n := range gestureNames {
		if normalizeGesture(n) == key {
			return Gesture(g), nil
		}
	}
	return GestureNone, fmt.Errorf("不明なジェスチャーです: %q", name)
}

func (g Gesture) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

func (g *Gesture) UnmarshalText(text []byte) error {
	parsed, err := ParseGesture(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}
