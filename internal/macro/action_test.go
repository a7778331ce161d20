package macro

import (
	"errors"
	"testing"
)

func TestParseInputEvent(t *testing.T) {
	tests := []struct {
		in   string
		want InputEvent
	}{
		{"Right", EventRight},
		{"right", EventRight},
		{"Anti-Clockwise", EventAntiClockwise},
		{"anti_clockwise", EventAntiClockwise},
		{"ButtonA", EventButtonA},
		{"BtnB", EventButtonB},
		{" wave ", EventWave},
	}
	for _, tt := range tests {
		got, err := ParseInputEvent(tt.in)
		if err != nil {
			t.Errorf("ParseInputEvent(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseInputEvent(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseInputEvent("shake"); err == nil {
		t.Error("ParseInputEvent(shake) should fail")
	}
}

func TestParseModifiers(t *testing.T) {
	mod, err := ParseModifiers([]string{"win", "Ctrl"})
	if err != nil {
		t.Fatalf("ParseModifiers: %v", err)
	}
	if mod != ModWin|ModCtrl {
		t.Errorf("ParseModifiers(win, ctrl) = %v, want win|ctrl", mod)
	}
	if mod.String() != "ctrl|win" {
		t.Errorf("String() = %q", mod.String())
	}

	if _, err := ParseModifiers([]string{"hyper"}); err == nil {
		t.Error("unknown modifier should fail")
	}
}

func TestNewKeySet(t *testing.T) {
	usages := []byte{0x04, 0x05}
	ks, err := NewKeySet(ModShift, usages...)
	if err != nil {
		t.Fatalf("NewKeySet: %v", err)
	}
	usages[0] = 0xff
	if ks.Usages[0] != 0x04 {
		t.Error("NewKeySet should copy usages")
	}
	if ks.Kind() != KindKeySet {
		t.Errorf("Kind() = %v", ks.Kind())
	}

	if _, err := NewKeySet(0, 1, 2, 3, 4, 5, 6, 7); !errors.Is(err, ErrTooManyKeys) {
		t.Errorf("error = %v, want ErrTooManyKeys", err)
	}
}
