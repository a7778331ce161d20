package sensor

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultRetryInterval はセンサーの初期化に失敗したときの再試行間隔
const DefaultRetryInterval = 500 * time.Millisecond

// ErrStopped は初期化の再試行中に停止を要求された
var ErrStopped = errors.New("センサーの初期化が中断されました")

// Sensor は分類済みのジェスチャーを返すセンサー
// Pollはループの1周ごとに呼ばれ、ブロックしない。何もなければGestureNoneを返す
type Sensor interface {
	Poll() Gesture
	Close() error
}

// Opener はセンサーを初期化する関数
type Opener func() (Sensor, error)

// OpenWithRetry は成功するまで一定間隔でセンサーの初期化を繰り返す
// stopが閉じられたらErrStoppedを返す
func OpenWithRetry(open Opener, interval time.Duration, stop <-chan struct{}, logger *logrus.Logger) (Sensor, error) {
	if interval <= 0 {
		interval = DefaultRetryInterval
	}

	for attempt := 1; ; attempt++ {
		s, err := open()
		if err == nil {
			logger.WithField("attempt", attempt).Info("ジェスチャーセンサーを初期化しました")
			return s, nil
		}
		logger.WithError(err).WithField("attempt", attempt).Warn("ジェスチャーセンサーの初期化に失敗しました")

		timer := time.NewTimer(interval)
		select {
		case <-stop:
			timer.Stop()
			return nil, ErrStopped
		case <-timer.C:
		}
	}
}

// Queue は受信したジェスチャーをPollまで溜めておく
// 満杯のときに届いたものは捨てる
type Queue struct {
	ch chan Gesture
}

func NewQueue(size int) *Queue {
	return &Queue{ch: make(chan Gesture, size)}
}

// Push はジェスチャーを追加する。捨てた場合はfalse
func (q *Queue) Push(g Gesture) bool {
	select {
	case q.ch <- g:
		return true
	default:
		return false
	}
}

func (q *Queue) Poll() Gesture {
	select {
	case g := <-q.ch:
		return g
	default:
		return GestureNone
	}
}

// Drain は溜まっているジェスチャーをすべて捨てる
func (q *Queue) Drain() {
	for {
		select {
		case <-q.ch:
		default:
			return
		}
	}
}
