package features

import "testing"

func TestMotionFilter(t *testing.T) {
	mf := NewMotionFilter(0.5, 1)

	if dx, dy := mf.Filter(10, -10); dx != 10 || dy != -10 {
		t.Errorf("warm-up should pass raw values, got %d, %d", dx, dy)
	}
	if dx, dy := mf.Filter(20, -20); dx != 15 || dy != -15 {
		t.Errorf("Filter = %d, %d; want 15, -15", dx, dy)
	}

	mf.Reset()
	if dx, _ := mf.Filter(4, 0); dx != 4 {
		t.Errorf("after Reset warm-up should restart, got %d", dx)
	}
}

func TestMotionFilterClamp(t *testing.T) {
	if mf := NewMotionFilter(-1, 0); mf.smoothingFactor != 0 {
		t.Errorf("factor = %v, want 0", mf.smoothingFactor)
	}
	if mf := NewMotionFilter(2, 0); mf.smoothingFactor != 1 {
		t.Errorf("factor = %v, want 1", mf.smoothingFactor)
	}
	mf := NewMotionFilter(0, 0)
	if dx, dy := mf.Filter(7, -3); dx != 7 || dy != -3 {
		t.Errorf("factor 0 should not smooth, got %d, %d", dx, dy)
	}
}
