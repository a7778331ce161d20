package types

import "syscall"

// Event は入力イベントを表す構造体（struct input_event）
type Event struct {
	Time  syscall.Timeval // イベント発生時刻
	Type  uint16          // イベントタイプ
	Code  uint16          // イベントコード
	Value int32           // イベント値
}

// EventSize は64bit環境での struct input_event のバイト数
const EventSize = 24
