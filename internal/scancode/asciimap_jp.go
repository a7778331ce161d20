// Package scancode は文字をJISキーボード配列のHID使用コードに変換する
package scancode

const shift = 0x02 // 左Shift

// Key は1文字を打鍵するための修飾キーと使用コードの組
type Key struct {
	Modifier byte
	Usage    byte
}

// TableSize はASCII表の大きさ。これ以上のコードポイントは拡張表だけを参照する
const TableSize = 0x80

// asciimapJP はJIS配列でのASCII文字の打鍵方法
// Usageが0の項目は対応なし
var asciimapJP = [TableSize]Key{
	'\b': {0, 0x2a}, // Backspace
	'\t': {0, 0x2b},
	'\n': {0, 0x28}, // Enter
	0x1b: {0, 0x29}, // Esc

	' ':  {0, 0x2c},
	'!':  {shift, 0x1e},
	'"':  {shift, 0x1f},
	'#':  {shift, 0x20},
	'$':  {shift, 0x21},
	'%':  {shift, 0x22},
	'&':  {shift, 0x23},
	'\'': {shift, 0x24},
	'(':  {shift, 0x25},
	')':  {shift, 0x26},
	'*':  {shift, 0x34},
	'+':  {shift, 0x33},
	',':  {0, 0x36},
	'-':  {0, 0x2d},
	'.':  {0, 0x37},
	'/':  {0, 0x38},

	'0': {0, 0x27},
	'1': {0, 0x1e},
	'2': {0, 0x1f},
	'3': {0, 0x20},
	'4': {0, 0x21},
	'5': {0, 0x22},
	'6': {0, 0x23},
	'7': {0, 0x24},
	'8': {0, 0x25},
	'9': {0, 0x26},

	':': {0, 0x34},
	';': {0, 0x33},
	'<': {shift, 0x36},
	'=': {shift, 0x2d},
	'>': {shift, 0x37},
	'?': {shift, 0x38},
	'@': {0, 0x2f},

	'A': {shift, 0x04}, 'B': {shift, 0x05}, 'C': {shift, 0x06}, 'D': {shift, 0x07},
	'E': {shift, 0x08}, 'F': {shift, 0x09}, 'G': {shift, 0x0a}, 'H': {shift, 0x0b},
	'I': {shift, 0x0c}, 'J': {shift, 0x0d}, 'K': {shift, 0x0e}, 'L': {shift, 0x0f},
	'M': {shift, 0x10}, 'N': {shift, 0x11}, 'O': {shift, 0x12}, 'P': {shift, 0x13},
	'Q': {shift, 0x14}, 'R': {shift, 0x15}, 'S': {shift, 0x16}, 'T': {shift, 0x17},
	'U': {shift, 0x18}, 'V': {shift, 0x19}, 'W': {shift, 0x1a}, 'X': {shift, 0x1b},
	'Y': {shift, 0x1c}, 'Z': {shift, 0x1d},

	'[':  {0, 0x30},
	'\\': {0, 0x87}, // ろ
	']':  {0, 0x32},
	'^':  {0, 0x2e},
	'_':  {shift, 0x87},
	'`':  {shift, 0x2f},

	'a': {0, 0x04}, 'b': {0, 0x05}, 'c': {0, 0x06}, 'd': {0, 0x07},
	'e': {0, 0x08}, 'f': {0, 0x09}, 'g': {0, 0x0a}, 'h': {0, 0x0b},
	'i': {0, 0x0c}, 'j': {0, 0x0d}, 'k': {0, 0x0e}, 'l': {0, 0x0f},
	'm': {0, 0x10}, 'n': {0, 0x11}, 'o': {0, 0x12}, 'p': {0, 0x13},
	'q': {0, 0x14}, 'r': {0, 0x15}, 's': {0, 0x16}, 't': {0, 0x17},
	'u': {0, 0x18}, 'v': {0, 0x19}, 'w': {0, 0x1a}, 'x': {0, 0x1b},
	'y': {0, 0x1c}, 'z': {0, 0x1d},

	'{':  {shift, 0x30},
	'|':  {shift, 0x89}, // ￥キー
	'}':  {shift, 0x32},
	'~':  {shift, 0x2e},
	0x7f: {0, 0x4c}, // Delete
}

// ASCII外で対応している文字
var extendedJP = map[rune]Key{
	'¥': {0, 0x89},
	'￥': {0, 0x89},
}

// Translate は1文字を打鍵方法に変換する
// 対応表にない文字は ok=false を返す。呼び出し側はその文字を読み飛ばす
func Translate(r rune) (key Key, ok bool) {
	if r >= 0 && r < TableSize {
		key = asciimapJP[r]
		return key, key.Usage != 0
	}
	key, ok = extendedJP[r]
	return key, ok
}

// Usage は文字の使用コードだけを返す。対応がなければ0
func Usage(r rune) byte {
	key, _ := Translate(r)
	return key.Usage
}
