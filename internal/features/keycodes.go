package features

import "github.com/char5742/gesture-hid/internal/consts"

// usageKeycodes はHID使用コード(Keyboard/Keypad Page)からevdevキーコードへの対応
// linux/drivers/hid/hid-input.c の hid_keyboard[] と同じ並び。0は対応なし
var usageKeycodes = [...]uint16{
	0, 0, 0, 0, 30, 48, 46, 32, 18, 33, 34, 35, 23, 36, 37, 38,
	50, 49, 24, 25, 16, 19, 31, 20, 22, 47, 17, 45, 21, 44, 2, 3,
	4, 5, 6, 7, 8, 9, 10, 11, 28, 1, 14, 15, 57, 12, 13, 26,
	27, 43, 43, 39, 40, 41, 51, 52, 53, 58, 59, 60, 61, 62, 63, 64,
	65, 66, 67, 68, 87, 88, 99, 70, 119, 110, 102, 104, 111, 107, 109, 106,
	105, 108, 103, 69, 98, 55, 74, 78, 96, 79, 80, 81, 75, 76, 77, 71,
	72, 73, 82, 83, 86, 127, 116, 117, 183, 184, 185, 186, 187, 188, 189, 190,
	191, 192, 193, 194, 134, 138, 130, 132, 128, 129, 131, 137, 133, 135, 136, 113,
	115, 114, 0, 0, 0, 121, 0, 89, 93, 124, 92, 94, 95, 0, 0, 0,
}

// modifierKeycodes は修飾バイトのビット順に並べたevdevキーコード
var modifierKeycodes = [8]uint16{
	consts.KeyLeftCtrl,
	consts.KeyLeftShift,
	consts.KeyLeftAlt,
	consts.KeyLeftMeta,
	consts.KeyRightCtrl,
	consts.KeyRightShift,
	consts.KeyRightAlt,
	consts.KeyRightMeta,
}

// UsageKeycode はHID使用コードをevdevキーコードに変換する
func UsageKeycode(usage byte) (uint16, bool) {
	if int(usage) >= len(usageKeycodes) {
		return 0, false
	}
	code := usageKeycodes[usage]
	return code, code != 0
}

// ModifierKeycode は修飾バイトのビット番号(0-7)に対応するevdevキーコードを返す
func ModifierKeycode(bit int) uint16 {
	return modifierKeycodes[bit&7]
}

// keycodesInUse は仮想キーボードに登録するキーコードの一覧
func keycodesInUse() []uint16 {
	seen := make(map[uint16]bool)
	var codes []uint16
	for _, c := range append(usageKeycodes[:], modifierKeycodes[:]...) {
		if c != 0 && !seen[c] {
			seen[c] = true
			codes = append(codes, c)
		}
	}
	return codes
}
