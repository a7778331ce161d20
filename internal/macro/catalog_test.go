package macro

import (
	"errors"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	want := []string{"Desktop", "PowerPoint", "Zoom", "None"}
	if c.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", c.Len(), len(want))
	}
	for i, title := range want {
		if got := c.Title(i); got != title {
			t.Errorf("Title(%d) = %q, want %q", i, got, title)
		}
	}
	if dups := c.Lint(); len(dups) != 0 {
		t.Errorf("default catalog should have no duplicate bindings, got %+v", dups)
	}
}

func TestResolveDesktopRight(t *testing.T) {
	c := DefaultCatalog()
	action, ok := c.Resolve(0, EventRight)
	if !ok {
		t.Fatal("Desktop/Right should be bound")
	}
	key, isKey := action.(MappedKey)
	if !isKey {
		t.Fatalf("action = %T, want MappedKey", action)
	}
	if key.Usage != 0x4f || key.Modifier != ModWin|ModCtrl {
		t.Errorf("action = %+v, want usage 0x4f with win|ctrl", key)
	}
	if byte(key.Modifier) != 0x09 {
		t.Errorf("win|ctrl = %#x, want 0x09", byte(key.Modifier))
	}
}

func TestResolveZoomWave(t *testing.T) {
	c := DefaultCatalog()
	action, ok := c.Resolve(2, EventWave)
	if !ok {
		t.Fatal("Zoom/Wave should be bound")
	}
	if got := action.(MappedKey); got != (MappedKey{Usage: 0x04, Modifier: ModAlt}) {
		t.Errorf("action = %+v, want alt+a", got)
	}
}

func TestResolveNonePanel(t *testing.T) {
	c := DefaultCatalog()
	for ev := EventRight; ev <= EventButtonB; ev++ {
		if action, ok := c.Resolve(3, ev); ok {
			t.Errorf("None panel resolved %v to %+v", ev, action)
		}
	}
}

func TestResolveUnbound(t *testing.T) {
	c := DefaultCatalog()
	tests := []struct {
		panel int
		event InputEvent
	}{
		{0, EventUp},
		{1, EventWave},
		{2, EventButtonB},
		{0, EventNone},
		{-1, EventRight},
		{4, EventRight},
	}
	for _, tt := range tests {
		if _, ok := c.Resolve(tt.panel, tt.event); ok {
			t.Errorf("Resolve(%d, %v) should not be bound", tt.panel, tt.event)
		}
	}
}

func TestResolveFirstMatchWins(t *testing.T) {
	c, err := NewCatalog(Panel{
		Title: "dup",
		Macros: []Macro{
			{EventUp, "first", MappedKey{Usage: 0x04}},
			{EventUp, "second", MappedKey{Usage: 0x05}},
			{EventDown, "down", Text{"x"}},
		},
	})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	action, ok := c.Resolve(0, EventUp)
	if !ok || action.(MappedKey).Usage != 0x04 {
		t.Errorf("Resolve(Up) = %+v, %v, want first declared macro", action, ok)
	}

	dups := c.Lint()
	if len(dups) != 1 {
		t.Fatalf("Lint() returned %d duplicates, want 1", len(dups))
	}
	if dups[0].Event != EventUp || len(dups[0].Labels) != 2 || dups[0].Labels[0] != "first" {
		t.Errorf("Lint() = %+v", dups[0])
	}
}

func TestNewCatalogValidation(t *testing.T) {
	if _, err := NewCatalog(); !errors.Is(err, ErrEmptyCatalog) {
		t.Errorf("empty catalog error = %v, want ErrEmptyCatalog", err)
	}

	_, err := NewCatalog(Panel{Title: "p", Macros: []Macro{{EventNone, "none", Text{"x"}}}})
	if !errors.Is(err, ErrNoneBinding) {
		t.Errorf("None binding error = %v, want ErrNoneBinding", err)
	}

	_, err = NewCatalog(Panel{Title: "p", Macros: []Macro{{EventUp, "nil", nil}}})
	if err == nil {
		t.Error("nil action should be rejected")
	}

	_, err = NewCatalog(Panel{Title: "p", Macros: []Macro{
		{EventUp, "many", KeySet{Usages: []byte{1, 2, 3, 4, 5, 6, 7}}},
	}})
	if !errors.Is(err, ErrTooManyKeys) {
		t.Errorf("oversized key set error = %v, want ErrTooManyKeys", err)
	}
}

func TestCatalogIsImmutable(t *testing.T) {
	macros := []Macro{{EventUp, "up", MappedKey{Usage: 0x52}}}
	c, err := NewCatalog(Panel{Title: "p", Macros: macros})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	macros[0].Event = EventDown

	if _, ok := c.Resolve(0, EventUp); !ok {
		t.Error("catalog should not observe changes to the caller's slice")
	}
}

func TestPanelOutOfRange(t *testing.T) {
	c := DefaultCatalog()
	if _, err := c.Panel(9); !errors.Is(err, ErrPanelIndex) {
		t.Errorf("Panel(9) error = %v, want ErrPanelIndex", err)
	}
}
