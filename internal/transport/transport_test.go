package transport

import (
	"bytes"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/char5742/gesture-hid/internal/features"
	"github.com/char5742/gesture-hid/internal/hid"
	"github.com/char5742/gesture-hid/internal/macro"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before timeout")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

var rightPress = hid.KeyReport(macro.ModWin|macro.ModCtrl, 0x4f)

func TestEncodeHIDP(t *testing.T) {
	got := encodeHIDP(rightPress)
	want := []byte{0xa1, 0x01, 0x09, 0x00, 0x4f, 0, 0, 0, 0, 0}
	if !bytes.Equal(got, want) {
		t.Errorf("encodeHIDP = % x, want % x", got, want)
	}
}

func TestFormatMAC(t *testing.T) {
	got := formatMAC([6]uint8{0x66, 0x55, 0x44, 0x33, 0x22, 0x11})
	if got != "11:22:33:44:55:66" {
		t.Errorf("formatMAC = %q", got)
	}
}

func TestBlueZSingleHost(t *testing.T) {
	link := &hid.LinkState{}
	b := &BlueZ{link: link, log: quietLogger(), intr: -1, ctrl: -1, done: make(chan struct{})}

	if err := b.SendReport(rightPress); !errors.Is(err, ErrNotConnected) {
		t.Errorf("SendReport without host = %v, want ErrNotConnected", err)
	}
	if !b.attach(10, psmControl) || !b.attach(11, psmInterrupt) {
		t.Fatal("first host should be accepted")
	}
	if !hid.Ready(link) {
		t.Error("interrupt channel should mark the link ready")
	}
	if b.attach(12, psmInterrupt) {
		t.Error("second host should be refused")
	}

	b.detach(psmInterrupt)
	if link.Connected() || link.NotificationsEnabled() {
		t.Error("closing the interrupt channel should reset the link")
	}
	if !b.attach(13, psmInterrupt) {
		t.Error("a new host should be accepted after disconnect")
	}
}

type fakeGadgetFile struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	err    error
	closed bool
}

func (f *fakeGadgetFile) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	return f.buf.Write(p)
}

func (f *fakeGadgetFile) SetWriteDeadline(time.Time) error { return nil }

func (f *fakeGadgetFile) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func TestGadgetSendReport(t *testing.T) {
	link := &hid.LinkState{}
	file := &fakeGadgetFile{}
	g := newGadget(file, link, quietLogger())
	defer g.Close()

	if !hid.Ready(link) {
		t.Fatal("opened gadget should mark the link ready")
	}
	if err := g.SendReport(rightPress); err != nil {
		t.Fatalf("SendReport: %v", err)
	}
	want := []byte{0x01, 0x09, 0x00, 0x4f, 0, 0, 0, 0, 0}
	if !bytes.Equal(file.buf.Bytes(), want) {
		t.Errorf("wrote % x, want % x", file.buf.Bytes(), want)
	}

	file.mu.Lock()
	file.err = errors.New("timeout")
	file.mu.Unlock()
	if err := g.SendReport(rightPress); err == nil {
		t.Error("write failure should be returned")
	}
	if link.Connected() {
		t.Error("write failure should mark the link down")
	}
}

func TestGadgetClose(t *testing.T) {
	link := &hid.LinkState{}
	file := &fakeGadgetFile{}
	g := newGadget(file, link, quietLogger())

	if err := g.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !file.closed || link.Connected() {
		t.Error("Close should close the file and reset the link")
	}
	if err := g.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestEncodeFrame(t *testing.T) {
	got := EncodeFrame(rightPress)
	want := []byte{0xF1, 0x01, 0x09, 0x00, 0x4f, 0, 0, 0, 0, 0, 0x4a}
	if !bytes.Equal(got, want) {
		t.Errorf("EncodeFrame = % x, want % x", got, want)
	}
	if len(EncodeFrame(hid.ReleaseReport)) != FrameSize {
		t.Errorf("frame size = %d, want %d", len(got), FrameSize)
	}
}

func TestStatusParser(t *testing.T) {
	var p statusParser
	input := []byte{0x00, 0x7f, 0xF2, 0x03, 0x11, 0xF2, 0x01}
	var got []byte
	for _, b := range input {
		if flags, ok := p.Feed(b); ok {
			got = append(got, flags)
		}
	}
	if !bytes.Equal(got, []byte{0x03, 0x01}) {
		t.Errorf("parsed flags = % x, want 03 01", got)
	}
}

type fakePort struct {
	io.Reader
	mu  sync.Mutex
	out bytes.Buffer
	pr  *io.PipeReader
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.out.Write(b)
}

func (p *fakePort) Close() error { return p.pr.Close() }

func TestSerialLinkState(t *testing.T) {
	pr, pw := io.Pipe()
	port := &fakePort{Reader: pr, pr: pr}
	link := &hid.LinkState{}
	s := newSerial(port, link, quietLogger())
	defer s.Close()

	go pw.Write([]byte{0x00, 0xF2, 0x03})
	waitFor(t, func() bool { return hid.Ready(link) })

	go pw.Write([]byte{0xF2, 0x01})
	waitFor(t, func() bool { return link.Connected() && !link.NotificationsEnabled() })

	if err := s.SendReport(rightPress); err != nil {
		t.Fatalf("SendReport: %v", err)
	}
	port.mu.Lock()
	defer port.mu.Unlock()
	if !bytes.Equal(port.out.Bytes(), EncodeFrame(rightPress)) {
		t.Errorf("wrote % x", port.out.Bytes())
	}
}

func TestSerialReadErrorDisconnects(t *testing.T) {
	pr, pw := io.Pipe()
	link := &hid.LinkState{}
	link.Connect()
	s := newSerial(&fakePort{Reader: pr, pr: pr}, link, quietLogger())
	defer s.Close()

	_ = pw.CloseWithError(errors.New("unplugged"))
	waitFor(t, func() bool { return !link.Connected() })
}

type recordingKeyboard struct {
	changes [][]features.KeyChange
	closed  bool
}

func (k *recordingKeyboard) SendKeys(c []features.KeyChange) error {
	k.changes = append(k.changes, c)
	return nil
}

func (k *recordingKeyboard) Close() error { k.closed = true; return nil }

func TestUinputDiff(t *testing.T) {
	kb := &recordingKeyboard{}
	link := &hid.LinkState{}
	u := newUinput(kb, link, quietLogger())

	if !hid.Ready(link) {
		t.Fatal("uinput should always be ready")
	}
	if err := u.SendReport(rightPress); err != nil {
		t.Fatal(err)
	}
	if err := u.SendReport(hid.ReleaseReport); err != nil {
		t.Fatal(err)
	}
	if err := u.SendReport(hid.ReleaseReport); err != nil {
		t.Fatal(err)
	}

	want := [][]features.KeyChange{
		{{Code: 29, Pressed: true}, {Code: 125, Pressed: true}, {Code: 106, Pressed: true}},
		{{Code: 106, Pressed: false}, {Code: 29, Pressed: false}, {Code: 125, Pressed: false}},
	}
	if len(kb.changes) != len(want) {
		t.Fatalf("changes = %v, want %v", kb.changes, want)
	}
	for i := range want {
		if len(kb.changes[i]) != len(want[i]) {
			t.Fatalf("changes[%d] = %v, want %v", i, kb.changes[i], want[i])
		}
		for j := range want[i] {
			if kb.changes[i][j] != want[i][j] {
				t.Errorf("changes[%d][%d] = %v, want %v", i, j, kb.changes[i][j], want[i][j])
			}
		}
	}
}

func TestUinputCloseReleasesHeldKeys(t *testing.T) {
	kb := &recordingKeyboard{}
	u := newUinput(kb, &hid.LinkState{}, quietLogger())
	_ = u.SendReport(hid.KeyReport(0, 0x04))

	if err := u.Close(); err != nil {
		t.Fatal(err)
	}
	if !kb.closed || len(kb.changes) != 2 {
		t.Fatalf("changes = %v, closed = %v", kb.changes, kb.closed)
	}
	if got := kb.changes[1][0]; got.Code != 30 || got.Pressed {
		t.Errorf("release = %v, want a released", got)
	}
}

type failingTransport struct{ err error }

func (f failingTransport) SendReport(hid.Report) error { return f.err }
func (f failingTransport) Close() error                { return nil }

func TestMonitorPublishesSentFrames(t *testing.T) {
	feed := NewFrameFeed(quietLogger())
	frames, cancel := feed.Subscribe()
	defer cancel()

	ok := NewMonitor(failingTransport{}, feed)
	if err := ok.SendReport(rightPress); err != nil {
		t.Fatal(err)
	}
	select {
	case f := <-frames:
		if f.Report != "09004f0000000000" || f.Modifier != "ctrl|win" || len(f.Keys) != 1 || f.Keys[0] != 0x4f {
			t.Errorf("frame = %+v", f)
		}
	default:
		t.Fatal("no frame published")
	}

	bad := NewMonitor(failingTransport{err: errors.New("down")}, feed)
	if err := bad.SendReport(rightPress); err == nil {
		t.Error("transport error should be returned")
	}
	select {
	case f := <-frames:
		t.Errorf("failed send published %+v", f)
	default:
	}
}

func TestFrameFeedWebSocket(t *testing.T) {
	feed := NewFrameFeed(quietLogger())
	srv := httptest.NewServer(feed)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	// サーバー側の購読登録を待たずに送ると取りこぼすので、受信するまで送り続ける
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for {
			select {
			case <-stop:
				return
			case <-time.After(10 * time.Millisecond):
				feed.Publish(rightPress)
			}
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f Frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if f.Report != rightPress.String() {
		t.Errorf("frame report = %s, want %s", f.Report, rightPress.String())
	}
}
