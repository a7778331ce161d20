package consts

// UIInput デバイスの定数（uinput.hから）
const (
	MaxNameSize  = 80         // デバイス名の最大サイズ
	DevCreate    = 0x5501     // デバイス作成用のIOCTL
	DevDestroy   = 0x5502     // デバイス破棄用のIOCTL
	SetEvBit     = 0x40045564 // イベントビット設定用のIOCTL
	SetKeyBit    = 0x40045565 // キービット設定用のIOCTL
	BusBluetooth = 0x05       // Bluetoothバスタイプ
)

// evdev デバイス制御用定数
const (
	AbsSize   = 64         // 絶対座標の配列サイズ
	EVIOCGRAB = 0x40044590 // デバイスの排他制御用のIOCTL
	EVIOCGKEY = 0x80604518 // 押下中キーのビットマップ取得用のIOCTL (KEY_MAX+1 bits)
	KeyMax    = 0x2ff      // キーコードの最大値
)
