package transport

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/char5742/gesture-hid/internal/hid"
)

const (
	frameBuffer       = 32
	frameWriteTimeout = time.Second
)

// Frame は送信したレポートの記録
type Frame struct {
	Time     time.Time `json:"time"`
	Report   string    `json:"report"`
	Modifier string    `json:"modifier"`
	Keys     []int     `json:"keys"`
}

func newFrame(r hid.Report) Frame {
	keys := make([]int, 0, 6)
	for _, k := range r.Keys() {
		keys = append(keys, int(k))
	}
	return Frame{
		Time:     time.Now(),
		Report:   r.String(),
		Modifier: r.Modifier().String(),
		Keys:     keys,
	}
}

// FrameFeed は送信したレポートをWebSocketの購読者へ配信する
type FrameFeed struct {
	mu       sync.Mutex
	subs     map[chan Frame]struct{}
	upgrader websocket.Upgrader
	log      *logrus.Logger
}

func NewFrameFeed(logger *logrus.Logger) *FrameFeed {
	return &FrameFeed{
		subs: make(map[chan Frame]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: logger,
	}
}

// Subscribe は購読を開始する。戻り値の関数で購読を解除する
func (f *FrameFeed) Subscribe() (<-chan Frame, func()) {
	ch := make(chan Frame, frameBuffer)
	f.mu.Lock()
	f.subs[ch] = struct{}{}
	f.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, ch)
			f.mu.Unlock()
		})
	}
}

// Publish はレポートを全購読者へ送る。受け取りが追いつかない購読者の分は捨てる
func (f *FrameFeed) Publish(r hid.Report) {
	frame := newFrame(r)

	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subs {
		select {
		case ch <- frame:
		default:
		}
	}
}

// ServeHTTP は /ws/frames のWebSocket接続を処理する
func (f *FrameFeed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.log.WithError(err).Warn("WebSocketへのアップグレードに失敗しました")
		return
	}
	defer conn.Close()

	frames, cancel := f.Subscribe()
	defer cancel()

	// クライアントからのメッセージは使わない。切断の検出のためだけに読む
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case frame := <-frames:
			_ = conn.SetWriteDeadline(time.Now().Add(frameWriteTimeout))
			if err := conn.WriteJSON(frame); err != nil {
				return
			}
		}
	}
}

// Monitor は送信に成功したレポートをFrameFeedにも流す
type Monitor struct {
	Transport
	feed *FrameFeed
}

func NewMonitor(t Transport, feed *FrameFeed) *Monitor {
	return &Monitor{Transport: t, feed: feed}
}

func (m *Monitor) SendReport(r hid.Report) error {
	if err := m.Transport.SendReport(r); err != nil {
		return err
	}
	m.feed.Publish(r)
	return nil
}
