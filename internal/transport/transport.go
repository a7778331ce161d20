// Package transport はキーボードレポートをホストへ届ける下位層
// どの実装も hid.LinkState を自分のゴルーチンから書き換える
package transport

import (
	"errors"
	"io"

	"github.com/char5742/gesture-hid/internal/hid"
)

// ErrNotConnected はホストが接続されていない状態で送信しようとした
var ErrNotConnected = errors.New("ホストが接続されていません")

// Transport はレポートの送信と後始末ができる下位層
type Transport interface {
	hid.Transport
	io.Closer
}
