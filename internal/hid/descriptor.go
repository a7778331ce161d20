package hid

// ReportMap はブートキーボード互換のレポートディスクリプタ
// 入力: 修飾8bit, 予約1byte, キー6byte / 出力: LED 5bit + パディング3bit
// JISキー(0x87 ろ, 0x89 ￥)を送れるようにキーの範囲は0x00-0xFFにしている
var ReportMap = []byte{
	0x05, 0x01, // Usage Page (Generic Desktop Ctrls)
	0x09, 0x06, // Usage (Keyboard)
	0xa1, 0x01, // Collection (Application)
	0x85, ReportID, // Report ID (1)
	0x05, 0x07, // Usage Page (Kbrd/Keypad)
	0x19, 0xe0, // Usage Minimum (0xE0)
	0x29, 0xe7, // Usage Maximum (0xE7)
	0x15, 0x00, // Logical Minimum (0)
	0x25, 0x01, // Logical Maximum (1)
	0x75, 0x01, // Report Size (1)
	0x95, 0x08, // Report Count (8)
	0x81, 0x02, // Input (Data,Var,Abs) 修飾キー
	0x95, 0x01, // Report Count (1)
	0x75, 0x08, // Report Size (8)
	0x81, 0x01, // Input (Const) 予約
	0x95, 0x06, // Report Count (6)
	0x75, 0x08, // Report Size (8)
	0x15, 0x00, // Logical Minimum (0)
	0x26, 0xff, 0x00, // Logical Maximum (255)
	0x19, 0x00, // Usage Minimum (0x00)
	0x2a, 0xff, 0x00, // Usage Maximum (0xFF)
	0x81, 0x00, // Input (Data,Array,Abs) キー
	0x95, 0x05, // Report Count (5)
	0x75, 0x01, // Report Size (1)
	0x05, 0x08, // Usage Page (LEDs)
	0x19, 0x01, // Usage Minimum (Num Lock)
	0x29, 0x05, // Usage Maximum (Kana)
	0x91, 0x02, // Output (Data,Var,Abs)
	0x95, 0x01, // Report Count (1)
	0x75, 0x03, // Report Size (3)
	0x91, 0x01, // Output (Const) パディング
	0xc0, // End Collection
}
