package hid

import "sync/atomic"

// Link はホストとの接続状態を読み取るためのインターフェース
type Link interface {
	Connected() bool
	NotificationsEnabled() bool
}

// LinkState は無線リンクの状態
// トランスポートの接続/切断コールバックが書き込み、送信側は読み取るだけ
type LinkState struct {
	connected     atomic.Bool
	notifications atomic.Bool
}

func (l *LinkState) Connected() bool            { return l.connected.Load() }
func (l *LinkState) NotificationsEnabled() bool { return l.notifications.Load() }

func (l *LinkState) SetConnected(v bool)     { l.connected.Store(v) }
func (l *LinkState) SetNotifications(v bool) { l.notifications.Store(v) }

// Connect は接続済みかつ通知有効の状態にする
func (l *LinkState) Connect() {
	l.connected.Store(true)
	l.notifications.Store(true)
}

// Disconnect は初期状態に戻す
func (l *LinkState) Disconnect() {
	l.notifications.Store(false)
	l.connected.Store(false)
}

// Ready はレポートを送信できる状態かどうかを返す
func Ready(l Link) bool {
	return l.Connected() && l.NotificationsEnabled()
}
