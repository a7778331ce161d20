package sensor

import (
	"github.com/sirupsen/logrus"

	"github.com/char5742/gesture-hid/internal/features"
)

const (
	// DefaultSwipeThreshold はスワイプとみなす移動量の合計
	DefaultSwipeThreshold = 60
	// mouseIdleReset はこの回数続けて動きがなければ途中の移動量を捨てる
	mouseIdleReset = 50
)

// MotionSource は相対移動量を返す入力装置
type MotionSource interface {
	GetMotion() (dx int32, dy int32, wheel int32)
	Close() error
}

// MouseSensor はマウスやトラックボールの動きをスワイプとして分類する
// ホイールの上下は Forward/Backward になる
type MouseSensor struct {
	src       MotionSource
	filter    *features.MotionFilter
	threshold int32
	accX      int32
	accY      int32
	idle      int
}

// OpenMouse はevdevのポインティングデバイスを専有してセンサーにする
func OpenMouse(path string, threshold int32, logger *logrus.Logger) (*MouseSensor, error) {
	m, err := features.CreateMouse(path)
	if err != nil {
		return nil, err
	}
	if err := m.Grab(); err != nil {
		logger.WithError(err).Warn("マウスを専有できませんでした。カーソルも動きます")
	}
	return NewMouseSensor(m, threshold), nil
}

func NewMouseSensor(src MotionSource, threshold int32) *MouseSensor {
	if threshold <= 0 {
		threshold = DefaultSwipeThreshold
	}
	return &MouseSensor{
		src:       src,
		filter:    features.NewMotionFilter(0.5, 2),
		threshold: threshold,
	}
}

func (m *MouseSensor) Poll() Gesture {
	dx, dy, wheel := m.src.GetMotion()

	switch {
	case wheel > 0:
		m.reset()
		return GestureForward
	case wheel < 0:
		m.reset()
		return GestureBackward
	}

	if dx == 0 && dy == 0 {
		m.idle++
		if m.idle >= mouseIdleReset {
			m.reset()
		}
		return GestureNone
	}
	m.idle = 0

	fx, fy := m.filter.Filter(dx, dy)
	m.accX += fx
	m.accY += fy

	var g Gesture
	switch {
	case abs(m.accX) >= m.threshold && abs(m.accX) >= abs(m.accY):
		g = GestureRight
		if m.accX < 0 {
			g = GestureLeft
		}
	case abs(m.accY) >= m.threshold:
		// evdevのY軸は下向きが正
		g = GestureDown
		if m.accY < 0 {
			g = GestureUp
		}
	default:
		return GestureNone
	}
	m.reset()
	return g
}

func (m *MouseSensor) reset() {
	m.accX, m.accY, m.idle = 0, 0, 0
	m.filter.Reset()
}

func (m *MouseSensor) Close() error {
	return m.src.Close()
}

func abs(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
