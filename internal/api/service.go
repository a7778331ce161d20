package api

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/char5742/gesture-hid/internal/features"
	"github.com/char5742/gesture-hid/internal/hid"
	"github.com/char5742/gesture-hid/internal/macro"
	"github.com/char5742/gesture-hid/internal/panel"
	"github.com/char5742/gesture-hid/internal/sensor"
)

const (
	DefaultTickInterval = time.Millisecond
	DefaultSettleDelay  = 100 * time.Millisecond
)

// Sender はアクションをホストへ送る（hid.Transmitter）
type Sender interface {
	Send(action macro.Action) (int, error)
}

// ServiceOptions はループのタイミング
type ServiceOptions struct {
	TickInterval  time.Duration
	SettleDelay   time.Duration
	RetryInterval time.Duration
}

// Status はサービスの状態
type Status struct {
	Running       bool   `json:"running"`
	Connected     bool   `json:"connected"`
	Notifications bool   `json:"notifications"`
	Panel         int    `json:"panel"`
	Title         string `json:"title"`
}

// MacroService は入力をポーリングしてマクロを送信するループを管理する
type MacroService struct {
	catalog    *macro.Catalog
	selector   *panel.Selector
	link       hid.Link
	sender     Sender
	openSensor sensor.Opener
	buttons    features.Buttons
	opts       ServiceOptions
	sleep      func(time.Duration)
	log        *logrus.Logger

	statusMutex sync.RWMutex
	running     bool
	stopChan    chan struct{}
	done        chan struct{}
}

// NewMacroService は新しいサービスを作成する
func NewMacroService(catalog *macro.Catalog, selector *panel.Selector, link hid.Link, sender Sender,
	openSensor sensor.Opener, buttons features.Buttons, opts ServiceOptions, logger *logrus.Logger) *MacroService {
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	if buttons == nil {
		buttons = features.NoButtons{}
	}
	return &MacroService{
		catalog:    catalog,
		selector:   selector,
		link:       link,
		sender:     sender,
		openSensor: openSensor,
		buttons:    buttons,
		opts:       opts,
		sleep:      time.Sleep,
		log:        logger,
	}
}

// Start はループを開始する
// センサーの初期化はループ側で成功するまで繰り返す
func (s *MacroService) Start() error {
	s.statusMutex.Lock()
	defer s.statusMutex.Unlock()

	if s.running {
		return fmt.Errorf("サービスは既に実行中です")
	}

	for _, d := range s.catalog.Lint() {
		s.log.WithFields(logrus.Fields{
			"panel":  d.Title,
			"event":  d.Event,
			"labels": d.Labels,
		}).Warn("同じイベントに複数のマクロが割り当てられています。先に定義したものを使います")
	}

	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	s.running = true

	go s.run(s.stopChan, s.done)
	return nil
}

// Stop はループを停止し、センサーを閉じ終わるまで待つ
func (s *MacroService) Stop() error {
	s.statusMutex.Lock()
	if !s.running {
		s.statusMutex.Unlock()
		return fmt.Errorf("サービスは実行されていません")
	}
	close(s.stopChan)
	s.running = false
	done := s.done
	s.statusMutex.Unlock()

	<-done
	return nil
}

// IsRunning はサービスが実行中かどうかを返す
func (s *MacroService) IsRunning() bool {
	s.statusMutex.RLock()
	defer s.statusMutex.RUnlock()
	return s.running
}

// Status は現在の状態を返す
func (s *MacroService) Status() Status {
	return Status{
		Running:       s.IsRunning(),
		Connected:     s.link.Connected(),
		Notifications: s.link.NotificationsEnabled(),
		Panel:         s.selector.Current(),
		Title:         s.selector.Title(),
	}
}

// NextPanel はパネル切替ボタンと同じ操作をする
func (s *MacroService) NextPanel() int {
	return s.selector.Advance()
}

// Catalog はサービスが使うカタログを返す
func (s *MacroService) Catalog() *macro.Catalog {
	return s.catalog
}

// run はメインループ
func (s *MacroService) run(stop <-chan struct{}, done chan<- struct{}) {
	defer func() {
		s.log.Info("マクロサービスを停止しました")
		close(done)
	}()

	sen, err := sensor.OpenWithRetry(s.openSensor, s.opts.RetryInterval, stop, s.log)
	if err != nil {
		if !errors.Is(err, sensor.ErrStopped) {
			s.log.WithError(err).Error("ジェスチャーセンサーを初期化できませんでした")
		}
		return
	}
	defer sen.Close()

	s.selector.Show()
	s.log.WithField("panel", s.selector.Title()).Info("マクロサービスを開始しました")

	ticker := time.NewTicker(s.opts.TickInterval)
	defer ticker.Stop()

	for {
		s.step(sen)

		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}

// step はループの1周分の処理
// パネル切替が押された周はマクロを処理しない
func (s *MacroService) step(sen sensor.Sensor) {
	if s.buttons.WasPressed(features.ButtonPanel) {
		s.selector.Advance()
		return
	}

	if !s.link.Connected() {
		return
	}

	if g := sen.Poll(); g != sensor.GestureNone {
		s.log.WithField("gesture", g).Debug("ジェスチャーを検出しました")
		s.dispatch(g.Event())
		s.sleep(s.opts.SettleDelay)
	}

	if s.buttons.WasPressed(features.ButtonA) {
		s.dispatch(macro.EventButtonA)
		s.sleep(s.opts.SettleDelay)
	}
	if s.buttons.WasPressed(features.ButtonB) {
		s.dispatch(macro.EventButtonB)
		s.sleep(s.opts.SettleDelay)
	}
}

// dispatch はイベントを現在のパネルで解決して送信する
func (s *MacroService) dispatch(event macro.InputEvent) {
	if event == macro.EventNone {
		return
	}

	current := s.selector.Current()
	entry := s.log.WithFields(logrus.Fields{
		"panel": s.catalog.Title(current),
		"event": event,
	})

	action, ok := s.catalog.Resolve(current, event)
	if !ok {
		entry.Debug("マクロが割り当てられていません")
		return
	}

	n, err := s.sender.Send(action)
	if err != nil {
		entry.WithError(err).Error("マクロの送信に失敗しました")
		return
	}
	entry.WithFields(logrus.Fields{"kind": action.Kind(), "frames": n}).Info("マクロを送信しました")
}
