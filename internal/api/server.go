package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/char5742/gesture-hid/internal/config"
)

// Server はAPIサーバーを表す構造体
type Server struct {
	server  *http.Server
	service *MacroService
	cfg     *config.Config
	frames  http.Handler
	gesture http.Handler // websocketセンサーでなければnil
	port    int
	log     *logrus.Logger
}

// NewServer は新しいAPIサーバーを作成する
func NewServer(cfg *config.Config, service *MacroService, comps *Components, port int, logger *logrus.Logger) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		frames:  comps.Frames,
		port:    port,
		log:     logger,
	}
	if comps.GestureSocket != nil {
		s.gesture = comps.GestureSocket
	}
	return s
}

// URL はブラウザで開く状態ページのURLを返す
func (s *Server) URL() string {
	return fmt.Sprintf("http://localhost:%d/api/status", s.port)
}

// Handler はルーティング済みのハンドラを返す
func (s *Server) Handler() http.Handler {
	router := http.NewServeMux()
	s.setupRoutes(router)
	return router
}

// Start はAPIサーバーを開始する。Stopで止められた場合はnilを返す
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.log.WithField("port", s.port).Info("APIサーバーを開始します")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop はAPIサーバーを停止する
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		s.log.Info("APIサーバーを停止します...")
		return s.server.Shutdown(ctx)
	}
	return nil
}

// writeJSON はJSONレスポンスを書き込む
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			logrus.WithError(err).Warn("JSONエンコードエラー")
		}
	}
}

// writeError はエラーレスポンスを書き込む
func writeError(w http.ResponseWriter, status int, message string) {
	response := map[string]string{"error": message}
	writeJSON(w, status, response)
}
