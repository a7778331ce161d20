package transport

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/char5742/gesture-hid/internal/hid"
)

const (
	// gadgetWriteTimeout はホストが読まないときに書き込みを諦めるまでの時間
	// 通常は1ms以内に終わる
	gadgetWriteTimeout = 5 * time.Millisecond
	// gadgetProbeInterval は切断中にホストの再接続を確認する間隔
	gadgetProbeInterval = time.Second
)

type deadlineWriter interface {
	io.WriteCloser
	SetWriteDeadline(t time.Time) error
}

// Gadget はUSB HIDガジェット(/dev/hidgN)へレポートを書き込む
// ガジェット自体の構成(configfs)は外部で行う
type Gadget struct {
	mu   sync.Mutex
	w    deadlineWriter
	link *hid.LinkState
	log  *logrus.Logger
	done chan struct{}
}

// OpenGadget はガジェットのデバイスファイルを開く
func OpenGadget(path string, link *hid.LinkState, logger *logrus.Logger) (*Gadget, error) {
	f, err := os.OpenFile(path, os.O_WRONLY, 0666)
	if err != nil {
		return nil, fmt.Errorf("ガジェットを開けませんでした: %w", err)
	}
	logger.WithField("path", path).Info("USB HIDガジェットを開きました")
	return newGadget(f, link, logger), nil
}

func newGadget(w deadlineWriter, link *hid.LinkState, logger *logrus.Logger) *Gadget {
	g := &Gadget{w: w, link: link, log: logger, done: make(chan struct{})}
	link.Connect()
	go g.probe()
	return g
}

func (g *Gadget) SendReport(r hid.Report) error {
	if err := g.write(r); err != nil {
		g.link.Disconnect()
		g.log.WithError(err).Warn("ホストがレポートを読み取らないため切断とみなします")
		return fmt.Errorf("ガジェットへの書き込みに失敗しました: %w", err)
	}
	return nil
}

func (g *Gadget) write(r hid.Report) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	_ = g.w.SetWriteDeadline(time.Now().Add(gadgetWriteTimeout))
	_, err := g.w.Write(r.WithID())
	return err
}

// probe は切断中に解放レポートを送り、書き込めたら再接続とみなす
func (g *Gadget) probe() {
	ticker := time.NewTicker(gadgetProbeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-g.done:
			return
		case <-ticker.C:
			if g.link.Connected() {
				continue
			}
			if err := g.write(hid.ReleaseReport); err == nil {
				g.link.Connect()
				g.log.Info("ホストがガジェットを再び読み取り始めました")
			}
		}
	}
}

func (g *Gadget) Close() error {
	select {
	case <-g.done:
		return nil
	default:
		close(g.done)
	}
	g.link.Disconnect()

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.w.Close()
}
