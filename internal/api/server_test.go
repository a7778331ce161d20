package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/char5742/gesture-hid/internal/config"
	"github.com/char5742/gesture-hid/internal/macro"
	"github.com/char5742/gesture-hid/internal/transport"
)

func newTestServer(t *testing.T) (*fixture, http.Handler) {
	t.Helper()
	f := newFixture()
	comps := &Components{Frames: transport.NewFrameFeed(quietLogger())}
	s := NewServer(config.DefaultConfig(), f.service, comps, 8080, quietLogger())
	t.Cleanup(func() {
		if f.service.IsRunning() {
			_ = f.service.Stop()
		}
	})
	return f, s.Handler()
}

func doRequest(t *testing.T, h http.Handler, method, path string, out interface{}) int {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	if out != nil && rec.Code == http.StatusOK {
		if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return rec.Code
}

func TestHealth(t *testing.T) {
	_, h := newTestServer(t)
	var body map[string]string
	if code := doRequest(t, h, http.MethodGet, "/api/health", &body); code != http.StatusOK || body["status"] != "ok" {
		t.Errorf("health = %d %v", code, body)
	}
}

func TestStatusAndNextPanel(t *testing.T) {
	_, h := newTestServer(t)

	var st Status
	doRequest(t, h, http.MethodGet, "/api/status", &st)
	if st.Panel != 0 || st.Title != "Desktop" || !st.Connected {
		t.Errorf("status = %+v", st)
	}

	var next struct {
		Panel int    `json:"panel"`
		Title string `json:"title"`
	}
	if code := doRequest(t, h, http.MethodPost, "/api/panels/next", &next); code != http.StatusOK {
		t.Fatalf("next = %d", code)
	}
	if next.Panel != 1 || next.Title != "PowerPoint" {
		t.Errorf("next = %+v", next)
	}

	doRequest(t, h, http.MethodGet, "/api/status", &st)
	if st.Panel != 1 {
		t.Errorf("status panel = %d, want 1", st.Panel)
	}

	if code := doRequest(t, h, http.MethodGet, "/api/panels/next", nil); code != http.StatusMethodNotAllowed {
		t.Errorf("GET /api/panels/next = %d, want 405", code)
	}
}

func TestGetPanels(t *testing.T) {
	_, h := newTestServer(t)

	var panels []panelView
	doRequest(t, h, http.MethodGet, "/api/panels", &panels)
	if len(panels) != macro.DefaultCatalog().Len() {
		t.Fatalf("panels = %d", len(panels))
	}
	desk := panels[0]
	if !desk.Active || desk.Title != "Desktop" || len(desk.Macros) != 3 {
		t.Fatalf("desktop = %+v", desk)
	}
	if m := desk.Macros[1]; m.Event != "Right" || m.Kind != "key" || m.Detail != "ctrl|win 0x4f" {
		t.Errorf("macro = %+v", m)
	}
	if none := panels[3]; none.Active || len(none.Macros) != 0 {
		t.Errorf("none panel = %+v", none)
	}
}

func TestServiceEndpoints(t *testing.T) {
	_, h := newTestServer(t)

	steps := []struct {
		method, path, want string
	}{
		{http.MethodGet, "/api/service/status", "stopped"},
		{http.MethodPost, "/api/service/stop", "not_running"},
		{http.MethodPost, "/api/service/start", "started"},
		{http.MethodPost, "/api/service/start", "already_running"},
		{http.MethodGet, "/api/service/status", "running"},
		{http.MethodPost, "/api/service/stop", "stopped"},
	}
	for _, s := range steps {
		var body map[string]string
		if code := doRequest(t, h, s.method, s.path, &body); code != http.StatusOK {
			t.Fatalf("%s %s = %d", s.method, s.path, code)
		}
		if body["status"] != s.want {
			t.Errorf("%s %s status = %q, want %q", s.method, s.path, body["status"], s.want)
		}
	}
}

func TestGestureSocketOnlyWhenConfigured(t *testing.T) {
	_, h := newTestServer(t)
	if code := doRequest(t, h, http.MethodGet, "/ws/gesture", nil); code != http.StatusNotFound {
		t.Errorf("/ws/gesture = %d, want 404", code)
	}
}

func TestDescribeAction(t *testing.T) {
	tests := []struct {
		action macro.Action
		want   string
	}{
		{macro.Text{Text: "hi"}, `"hi"`},
		{macro.MappedKey{Usage: 0x3e}, "none 0x3e"},
		{macro.KeySet{Modifier: macro.ModShift, Usages: []byte{0x04, 0x05}}, "shift 0x04,0x05"},
	}
	for _, tt := range tests {
		if got := describeAction(tt.action); got != tt.want {
			t.Errorf("describeAction(%#v) = %q, want %q", tt.action, got, tt.want)
		}
	}
}
