package transport

import (
	"fmt"
	"net"
	"os/exec"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/char5742/gesture-hid/internal/hid"
)

// L2CAPのPSM。HIDプロファイルで固定
const (
	psmControl   = 17
	psmInterrupt = 19
)

// hidpDataInput はHIDPのDATA|Inputヘッダ。レポートの前に必ず付ける
const hidpDataInput = 0xa1

// BlueZ はLinuxのBluetoothスタック上でHIDデバイスとして振る舞う
// SDPレコードの登録は外部で行う（descriptorサブコマンドの出力を使う）
type BlueZ struct {
	link *hid.LinkState
	log  *logrus.Logger

	mu        sync.Mutex
	intr      int // 割り込みチャネル。未接続なら-1
	ctrl      int // 制御チャネル。未接続なら-1
	listeners []int
	done      chan struct{}
}

// OpenBlueZ はアダプタを検出可能にして制御/割り込みチャネルの待ち受けを始める
func OpenBlueZ(hciDevice string, link *hid.LinkState, logger *logrus.Logger) (*BlueZ, error) {
	if err := exec.Command("hciconfig", hciDevice, "piscan").Run(); err != nil {
		return nil, fmt.Errorf("%sを検出可能にできませんでした: %w", hciDevice, err)
	}

	b := &BlueZ{
		link: link,
		log:  logger,
		intr: -1,
		ctrl: -1,
		done: make(chan struct{}),
	}
	for _, psm := range []uint16{psmControl, psmInterrupt} {
		fd, err := listenL2CAP(psm)
		if err != nil {
			_ = b.Close()
			return nil, fmt.Errorf("PSM %dの待ち受けに失敗しました: %w", psm, err)
		}
		b.listeners = append(b.listeners, fd)
		go b.acceptLoop(fd, psm)
	}
	logger.WithField("hci", hciDevice).Info("Bluetooth HIDの待ち受けを開始しました")
	return b, nil
}

func listenL2CAP(psm uint16) (int, error) {
	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_SEQPACKET, unix.BTPROTO_L2CAP)
	if err != nil {
		return -1, err
	}
	if err := unix.Bind(fd, &unix.SockaddrL2{PSM: psm}); err != nil {
		_ = unix.Close(fd)
		return -1, err
	}
	if err := unix.Listen(fd, 1); err != nil {
		_ = unix.Close(fd)
		return -1, err
	}
	return fd, nil
}

func (b *BlueZ) acceptLoop(fd int, psm uint16) {
	for {
		nfd, sa, err := unix.Accept(fd)
		if err != nil {
			select {
			case <-b.done:
				return
			default:
			}
			b.log.WithError(err).WithField("psm", psm).Warn("接続の受け付けに失敗しました")
			time.Sleep(100 * time.Millisecond)
			continue
		}

		addr := ""
		if l2, ok := sa.(*unix.SockaddrL2); ok {
			addr = formatMAC(l2.Addr)
		}
		go b.serve(nfd, psm, addr)
	}
}

// serve はホストが切断するまで接続を保持する
// ホストからデータは来ないので Read が返った時点で切断とみなす
func (b *BlueZ) serve(nfd int, psm uint16, addr string) {
	defer unix.Close(nfd)
	entry := b.log.WithFields(logrus.Fields{"psm": psm, "addr": addr})

	if !b.attach(nfd, psm) {
		entry.Info("別のホストが接続中のため拒否しました")
		return
	}
	entry.Info("ホストが接続しました")

	data := make([]byte, 64)
	for {
		n, err := unix.Read(nfd, data)
		if err != nil || n == 0 {
			break
		}
	}

	b.detach(psm)
	entry.Info("ホストが切断しました")
}

// attach は接続を登録する。同時に接続できるホストは1台だけ
func (b *BlueZ) attach(nfd int, psm uint16) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch psm {
	case psmControl:
		if b.ctrl >= 0 {
			return false
		}
		b.ctrl = nfd
	case psmInterrupt:
		if b.intr >= 0 {
			return false
		}
		b.intr = nfd
		b.link.Connect()
	}
	return true
}

func (b *BlueZ) detach(psm uint16) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch psm {
	case psmControl:
		b.ctrl = -1
	case psmInterrupt:
		b.intr = -1
		b.link.Disconnect()
	}
}

func (b *BlueZ) SendReport(r hid.Report) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.intr < 0 {
		return ErrNotConnected
	}
	if _, err := unix.Write(b.intr, encodeHIDP(r)); err != nil {
		return fmt.Errorf("割り込みチャネルへの書き込みに失敗しました: %w", err)
	}
	return nil
}

// Close は待ち受けと接続をすべて閉じる
func (b *BlueZ) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	select {
	case <-b.done:
		return nil
	default:
		close(b.done)
	}
	for _, fd := range b.listeners {
		// Acceptを起こすためにshutdownしてから閉じる
		_ = unix.Shutdown(fd, unix.SHUT_RDWR)
		_ = unix.Close(fd)
	}
	for _, fd := range []int{b.intr, b.ctrl} {
		if fd >= 0 {
			_ = unix.Shutdown(fd, unix.SHUT_RDWR)
		}
	}
	b.link.Disconnect()
	return nil
}

// encodeHIDP はHIDPヘッダとレポートIDを付けたフレームを作る
func encodeHIDP(r hid.Report) []byte {
	data := make([]byte, 0, hid.ReportSize+2)
	data = append(data, hidpDataInput)
	return append(data, r.WithID()...)
}

// formatMAC はソケットアドレスのバイト列（リトルエンディアン）を表記用に変換する
func formatMAC(addr [6]uint8) string {
	var data [6]byte
	for key, value := range addr {
		data[5-key] = value
	}
	return net.HardwareAddr(data[:]).String()
}
