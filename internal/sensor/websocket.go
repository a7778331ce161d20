package sensor

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// gestureMessage は /ws/gesture で受け取るメッセージ
type gestureMessage struct {
	Gesture Gesture `json:"gesture"`
}

// WebSocketSensor はWebSocket経由で送られてくるジェスチャーを受け取る
// スマートフォンなど別の端末で分類した結果を流し込むのに使う
type WebSocketSensor struct {
	queue    *Queue
	upgrader websocket.Upgrader
	log      *logrus.Logger
}

func NewWebSocketSensor(logger *logrus.Logger) *WebSocketSensor {
	return &WebSocketSensor{
		queue: NewQueue(queueSize),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: logger,
	}
}

func (s *WebSocketSensor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("WebSocketへのアップグレードに失敗しました")
		return
	}
	defer conn.Close()
	s.log.WithField("remote", r.RemoteAddr).Info("ジェスチャー送信元が接続しました")

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.log.WithField("remote", r.RemoteAddr).Info("ジェスチャー送信元が切断しました")
			return
		}

		var msg gestureMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.log.WithError(err).Warn("ジェスチャーメッセージを解釈できません")
			continue
		}
		if msg.Gesture == GestureNone {
			continue
		}
		if !s.queue.Push(msg.Gesture) {
			s.log.WithField("gesture", msg.Gesture).Warn("未処理のジェスチャーが多すぎるため捨てました")
		}
	}
}

func (s *WebSocketSensor) Poll() Gesture {
	return s.queue.Poll()
}

// Close は溜まっているジェスチャーを捨てる
// 接続の受け付けはHTTPサーバー側で続くので、再びPollすれば使える
func (s *WebSocketSensor) Close() error {
	s.queue.Drain()
	return nil
}
