package hid

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/char5742/gesture-hid/internal/macro"
	"github.com/char5742/gesture-hid/internal/scancode"
)

// DefaultKeyDelay は押下と解放、および打鍵と打鍵の間に置く最小間隔
// ホストのHIDスタックがこれより速いレポートを取りこぼすことがある
const DefaultKeyDelay = 20 * time.Millisecond

// Transport はレポートをホストへ送る下位層
type Transport interface {
	SendReport(r Report) error
}

// Transmitter はアクションをレポート列に変換してトランスポートへ送る
type Transmitter struct {
	transport Transport
	link      Link
	delay     time.Duration
	sleep     func(time.Duration)
	log       *logrus.Logger
}

// NewTransmitter は送信器を作成する。delayが0以下ならDefaultKeyDelayを使う
func NewTransmitter(transport Transport, link Link, delay time.Duration, logger *logrus.Logger) *Transmitter {
	if delay <= 0 {
		delay = DefaultKeyDelay
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Transmitter{
		transport: transport,
		link:      link,
		delay:     delay,
		sleep:     time.Sleep,
		log:       logger,
	}
}

// Send はアクションを送信し、実際に送ったレポート数を返す
// リンクが準備できていなければ何も送らない（エラーではない）
func (t *Transmitter) Send(action macro.Action) (int, error) {
	if !Ready(t.link) {
		t.log.Debug("ホストが受信可能でないため送信をスキップします")
		return 0, nil
	}

	switch a := action.(type) {
	case macro.MappedKey:
		return t.tap(KeyReport(a.Modifier, a.Usage))
	case macro.KeySet:
		return t.tap(KeyReport(a.Modifier, a.Usages...))
	case macro.Text:
		return t.typeText(a.Text)
	default:
		return 0, fmt.Errorf("未対応のアクションです: %T", action)
	}
}

// typeText は1文字ずつ押下/解放を送る。対応表にない文字は読み飛ばす
func (t *Transmitter) typeText(text string) (int, error) {
	sent := 0
	for _, r := range text {
		key, ok := scancode.Translate(r)
		if !ok {
			t.log.WithField("char", fmt.Sprintf("%q", r)).Debug("対応するキーがないため読み飛ばします")
			continue
		}
		n, err := t.tap(KeyReport(macro.Modifier(key.Modifier), key.Usage))
		sent += n
		if err != nil {
			return sent, err
		}
	}
	return sent, nil
}

// tap は押下レポートと解放レポートの組を送る
// 送信途中で切断された場合、残りのレポートは黙って捨てる
func (t *Transmitter) tap(press Report) (int, error) {
	if !Ready(t.link) {
		return 0, nil
	}
	if err := t.transport.SendReport(press); err != nil {
		return 0, fmt.Errorf("押下レポートの送信に失敗しました: %w", err)
	}
	t.sleep(t.delay)

	sent := 1
	if Ready(t.link) {
		if err := t.transport.SendReport(ReleaseReport); err != nil {
			return sent, fmt.Errorf("解放レポートの送信に失敗しました: %w", err)
		}
		sent++
	}
	t.sleep(t.delay)
	return sent, nil
}
