package consts

// イベントタイプの定数（input-event-codes.hより）
const (
	Syn = 0x00 // 同期イベント
	Key = 0x01 // キーイベント
	Rel = 0x02 // 相対座標イベント

	RelX      = 0x00 // X軸の相対移動
	RelY      = 0x01 // Y軸の相対移動
	RelWheel  = 0x08 // ホイールの相対移動
	SynReport = 0    // イベント報告の同期

	KeyReleased = 0
	KeyPressed  = 1
	KeyRepeat   = 2
)

// 修飾キーのevdevキーコード
const (
	KeyLeftCtrl   = 29
	KeyLeftShift  = 42
	KeyLeftAlt    = 56
	KeyLeftMeta   = 125
	KeyRightCtrl  = 97
	KeyRightShift = 54
	KeyRightAlt   = 100
	KeyRightMeta  = 126
)
