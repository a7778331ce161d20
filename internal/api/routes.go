package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/char5742/gesture-hid/internal/features"
	"github.com/char5742/gesture-hid/internal/macro"
)

// ルートの設定
func (s *Server) setupRoutes(router *http.ServeMux) {
	// パネル関連のエンドポイント
	router.HandleFunc("GET /api/status", s.handleStatus)
	router.HandleFunc("GET /api/panels", s.handleGetPanels)
	router.HandleFunc("POST /api/panels/next", s.handleNextPanel)

	// 設定とデバイス（読み取りのみ）
	router.HandleFunc("GET /api/config", s.handleGetConfig)
	router.HandleFunc("GET /api/devices", s.handleGetDevices)

	// サービス関連のエンドポイント
	router.HandleFunc("POST /api/service/start", s.handleStartService)
	router.HandleFunc("POST /api/service/stop", s.handleStopService)
	router.HandleFunc("GET /api/service/status", s.handleServiceStatus)

	// WebSocket
	router.Handle("GET /ws/frames", s.frames)
	if s.gesture != nil {
		router.Handle("GET /ws/gesture", s.gesture)
	}

	// ヘルスチェック用エンドポイント
	router.HandleFunc("GET /api/health", s.handleHealthCheck)
}

type macroView struct {
	Event  string `json:"event"`
	Label  string `json:"label"`
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

type panelView struct {
	Index  int         `json:"index"`
	Title  string      `json:"title"`
	Active bool        `json:"active"`
	Macros []macroView `json:"macros"`
}

// describeAction はアクションを表示用の文字列にする
func describeAction(a macro.Action) string {
	switch a := a.(type) {
	case macro.Text:
		return fmt.Sprintf("%q", a.Text)
	case macro.MappedKey:
		return fmt.Sprintf("%v %#02x", a.Modifier, a.Usage)
	case macro.KeySet:
		keys := make([]string, len(a.Usages))
		for i, u := range a.Usages {
			keys[i] = fmt.Sprintf("%#02x", u)
		}
		return fmt.Sprintf("%v %s", a.Modifier, strings.Join(keys, ","))
	}
	return ""
}

// ステータス取得ハンドラ
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Status())
}

// パネル一覧取得ハンドラ
func (s *Server) handleGetPanels(w http.ResponseWriter, r *http.Request) {
	current := s.service.Status().Panel
	views := []panelView{}
	for i, p := range s.service.Catalog().Panels() {
		v := panelView{Index: i, Title: p.Title, Active: i == current, Macros: []macroView{}}
		for _, m := range p.Macros {
			v.Macros = append(v.Macros, macroView{
				Event:  m.Event.String(),
				Label:  m.Label,
				Kind:   m.Action.Kind().String(),
				Detail: describeAction(m.Action),
			})
		}
		views = append(views, v)
	}
	writeJSON(w, http.StatusOK, views)
}

// パネル切替ハンドラ
func (s *Server) handleNextPanel(w http.ResponseWriter, r *http.Request) {
	index := s.service.NextPanel()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"panel": index,
		"title": s.service.Catalog().Title(index),
	})
}

// 設定取得ハンドラ
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg)
}

// デバイス一覧取得ハンドラ
func (s *Server) handleGetDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := features.ScanDevices()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "デバイス一覧の取得に失敗しました: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, devices)
}

// サービス起動ハンドラ
func (s *Server) handleStartService(w http.ResponseWriter, r *http.Request) {
	if s.service.IsRunning() {
		writeJSON(w, http.StatusOK, map[string]string{"status": "already_running"})
		return
	}

	if err := s.service.Start(); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("サービスの起動に失敗しました: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "started"})
}

// サービス停止ハンドラ
func (s *Server) handleStopService(w http.ResponseWriter, r *http.Request) {
	if !s.service.IsRunning() {
		writeJSON(w, http.StatusOK, map[string]string{"status": "not_running"})
		return
	}

	if err := s.service.Stop(); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("サービスの停止に失敗しました: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
}

// サービス状態取得ハンドラ
func (s *Server) handleServiceStatus(w http.ResponseWriter, r *http.Request) {
	status := "stopped"
	if s.service.IsRunning() {
		status = "running"
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

// ヘルスチェックハンドラ
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
