package transport

import (
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	"go.bug.st/serial"

	"github.com/char5742/gesture-hid/internal/hid"
)

// ブリッジとの間でやり取りするフレーム
// ホスト→ブリッジ: 0xF1, レポートID, 8バイト, チェックサム
// ブリッジ→ホスト: 0xF2, 状態フラグ
const (
	frameReport = 0xF1
	frameStatus = 0xF2

	statusConnected     = 1 << 0
	statusNotifications = 1 << 1

	// FrameSize はレポートフレームのバイト数
	FrameSize = hid.ReportSize + 3
)

// Serial はUARTで接続したBLE/USB HIDコプロセッサにレポートを渡す
// リンク状態はブリッジからの状態フレームで更新される
type Serial struct {
	mu   sync.Mutex
	port io.ReadWriteCloser
	link *hid.LinkState
	log  *logrus.Logger
	done chan struct{}
}

// OpenSerial はシリアルポートを開いてブリッジからの状態通知の受信を始める
func OpenSerial(name string, baud int, link *hid.LinkState, logger *logrus.Logger) (*Serial, error) {
	port, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("シリアルポート%sを開けませんでした: %w", name, err)
	}
	logger.WithFields(logrus.Fields{"port": name, "baud": baud}).Info("HIDブリッジに接続しました")
	return newSerial(port, link, logger), nil
}

func newSerial(port io.ReadWriteCloser, link *hid.LinkState, logger *logrus.Logger) *Serial {
	s := &Serial{port: port, link: link, log: logger, done: make(chan struct{})}
	go s.readLoop()
	return s
}

// EncodeFrame はレポートをブリッジ向けのフレームにする
func EncodeFrame(r hid.Report) []byte {
	frame := make([]byte, 0, FrameSize)
	frame = append(frame, frameReport)
	frame = append(frame, r.WithID()...)
	var sum byte
	for _, b := range frame {
		sum += b
	}
	return append(frame, sum)
}

func (s *Serial) SendReport(r hid.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.port.Write(EncodeFrame(r)); err != nil {
		return fmt.Errorf("ブリッジへの書き込みに失敗しました: %w", err)
	}
	return nil
}

func (s *Serial) readLoop() {
	var parser statusParser
	buf := make([]byte, 64)
	for {
		n, err := s.port.Read(buf)
		if err != nil {
			select {
			case <-s.done:
			default:
				s.log.WithError(err).Error("ブリッジからの読み取りに失敗しました")
			}
			s.link.Disconnect()
			return
		}
		for _, b := range buf[:n] {
			flags, ok := parser.Feed(b)
			if !ok {
				continue
			}
			connected := flags&statusConnected != 0
			notify := flags&statusNotifications != 0
			s.link.SetConnected(connected)
			s.link.SetNotifications(notify)
			s.log.WithFields(logrus.Fields{
				"connected":     connected,
				"notifications": notify,
			}).Info("ブリッジのリンク状態が変わりました")
		}
	}
}

func (s *Serial) Close() error {
	select {
	case <-s.done:
		return nil
	default:
		close(s.done)
	}
	return s.port.Close()
}

// statusParser はブリッジからのバイト列から状態フレームを取り出す
// 状態フレーム以外のバイトは読み捨てる
type statusParser struct {
	inFrame bool
}

// Feed は1バイト受け取り、状態フレームが完成したらフラグを返す
func (p *statusParser) Feed(b byte) (byte, bool) {
	if p.inFrame {
		p.inFrame = false
		return b, true
	}
	if b == frameStatus {
		p.inFrame = true
	}
	return 0, false
}
