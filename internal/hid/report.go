// Package hid はブートキーボード形式のHIDレポートの組み立てと送信を扱う
package hid

import (
	"encoding/hex"

	"github.com/char5742/gesture-hid/internal/macro"
)

const (
	// ReportID はキーボード入力レポートのID
	ReportID = 0x01
	// ReportSize はレポート本体のバイト数
	ReportSize = 8
)

// Report は8バイトのキーボード入力レポート
// [0]=修飾キー, [1]=予約(常に0), [2:8]=同時押しキー
type Report [ReportSize]byte

// ReleaseReport は全キー解放のレポート
var ReleaseReport Report

// KeyReport は押下レポートを作成する。7個目以降のキーは無視する
func KeyReport(mod macro.Modifier, usages ...byte) Report {
	var r Report
	r[0] = byte(mod)
	for i := 0; i < len(usages) && i < macro.MaxKeys; i++ {
		r[2+i] = usages[i]
	}
	return r
}

// Modifier は修飾キーのバイトを返す
func (r Report) Modifier() macro.Modifier {
	return macro.Modifier(r[0])
}

// Keys は押下中の使用コードを返す
func (r Report) Keys() []byte {
	var keys []byte
	for _, k := range r[2:] {
		if k != 0 {
			keys = append(keys, k)
		}
	}
	return keys
}

// IsRelease は全キー解放のレポートかどうか
func (r Report) IsRelease() bool {
	return r == ReleaseReport
}

// WithID はレポートIDを先頭に付けた9バイトを返す
func (r Report) WithID() []byte {
	data := make([]byte, 0, ReportSize+1)
	data = append(data, ReportID)
	return append(data, r[:]...)
}

func (r Report) String() string {
	return hex.EncodeToString(r[:])
}
