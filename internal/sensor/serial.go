package sensor

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"go.bug.st/serial"
)

const queueSize = 16

// SerialSensor はUARTで接続したジェスチャーセンサーから1行ずつ結果を読む
// "Right" のような名前、または "Gesture = Right" 形式の行を受け付ける
type SerialSensor struct {
	port  io.ReadCloser
	queue *Queue
	log   *logrus.Logger
	done  chan struct{}
}

// OpenSerial はシリアルポートを開いて受信を始める
func OpenSerial(name string, baud int, logger *logrus.Logger) (*SerialSensor, error) {
	port, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("シリアルポート%sを開けませんでした: %w", name, err)
	}
	return newSerialSensor(port, logger), nil
}

func newSerialSensor(port io.ReadCloser, logger *logrus.Logger) *SerialSensor {
	s := &SerialSensor{
		port:  port,
		queue: NewQueue(queueSize),
		log:   logger,
		done:  make(chan struct{}),
	}
	go s.readLoop()
	return s
}

func (s *SerialSensor) readLoop() {
	scanner := bufio.NewScanner(s.port)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		g, err := parseLine(line)
		if err != nil {
			s.log.WithField("line", line).Debug("ジェスチャー以外の行を読み飛ばします")
			continue
		}
		if g == GestureNone {
			continue
		}
		if !s.queue.Push(g) {
			s.log.WithField("gesture", g).Warn("未処理のジェスチャーが多すぎるため捨てました")
		}
	}

	select {
	case <-s.done:
	default:
		s.log.WithError(scanner.Err()).Error("ジェスチャーセンサーからの読み取りが終了しました")
	}
}

func parseLine(line string) (Gesture, error) {
	if i := strings.Index(line, "="); i >= 0 && strings.EqualFold(strings.TrimSpace(line[:i]), "gesture") {
		line = line[i+1:]
	}
	return ParseGesture(line)
}

func (s *SerialSensor) Poll() Gesture {
	return s.queue.Poll()
}

func (s *SerialSensor) Close() error {
	select {
	case <-s.done:
		return nil
	default:
		close(s.done)
	}
	return s.port.Close()
}
