package features

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestScanDir(t *testing.T) {
	root := t.TempDir()
	byID := filepath.Join(root, "by-id")
	if err := os.Mkdir(byID, 0o755); err != nil {
		t.Fatal(err)
	}
	links := map[string]string{
		"usb-Foo-event-kbd":      "../event3",
		"usb-Foo-event-mouse":    "../event4",
		"usb-Foo-mouse":          "../mouse0",
		"usb-Bar-event-joystick": "../event5",
	}
	for name, target := range links {
		if err := os.Symlink(target, filepath.Join(byID, name)); err != nil {
			t.Fatal(err)
		}
	}

	devices, err := scanDir(byID)
	if err != nil {
		t.Fatalf("scanDir: %v", err)
	}
	want := []Device{
		{Name: "usb-Foo-event-kbd", Path: filepath.Join(root, "event3"), Type: DeviceTypeKeyboard},
		{Name: "usb-Foo-event-mouse", Path: filepath.Join(root, "event4"), Type: DeviceTypeMouse},
	}
	if len(devices) != len(want) {
		t.Fatalf("devices = %+v, want %+v", devices, want)
	}
	for i := range want {
		if devices[i] != want[i] {
			t.Errorf("devices[%d] = %+v, want %+v", i, devices[i], want[i])
		}
	}
}

func TestFindDevice(t *testing.T) {
	devices := []Device{
		{Name: "kbd1", Path: "/dev/input/event1", Type: DeviceTypeKeyboard},
		{Name: "mouse1", Path: "/dev/input/event2", Type: DeviceTypeMouse},
		{Name: "kbd2", Path: "/dev/input/event3", Type: DeviceTypeKeyboard},
	}
	tests := []struct {
		name      string
		typ       DeviceType
		preferred string
		want      string
		ok        bool
	}{
		{"first keyboard", DeviceTypeKeyboard, "", "kbd1", true},
		{"preferred by name", DeviceTypeKeyboard, "kbd2", "kbd2", true},
		{"preferred by path", DeviceTypeKeyboard, "/dev/input/event3", "kbd2", true},
		{"preferred missing", DeviceTypeKeyboard, "kbd9", "kbd1", true},
		{"mouse", DeviceTypeMouse, "", "mouse1", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindDevice(devices, tt.typ, tt.preferred)
			if ok != tt.ok || got.Name != tt.want {
				t.Errorf("FindDevice = %+v, %v; want %s, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
	if _, ok := FindDevice(devices[:1], DeviceTypeMouse, ""); ok {
		t.Error("no mouse should be found")
	}
}

func TestDeviceMonitorUpdate(t *testing.T) {
	var current []Device
	dm := newDeviceMonitor(func() ([]Device, error) { return current, nil }, quietLogger())

	var events []DeviceEvent
	dm.RegisterCallback(func(ev DeviceEvent) { events = append(events, ev) })

	kbd := Device{Name: "kbd", Path: "/dev/input/event1", Type: DeviceTypeKeyboard}
	mouse := Device{Name: "mouse", Path: "/dev/input/event2", Type: DeviceTypeMouse}

	current = []Device{kbd, mouse}
	dm.Rescan()
	if len(events) != 2 || events[0].Type != DeviceAdded || events[1].Type != DeviceAdded {
		t.Fatalf("events = %+v, want two additions", events)
	}

	events = nil
	dm.Rescan()
	if len(events) != 0 {
		t.Errorf("unchanged scan produced %+v", events)
	}

	current = []Device{kbd}
	dm.Rescan()
	if len(events) != 1 || events[0].Type != DeviceRemoved || events[0].Device != mouse {
		t.Errorf("events = %+v, want mouse removal", events)
	}
	if got := dm.Devices(); len(got) != 1 || got[0] != kbd {
		t.Errorf("Devices() = %+v", got)
	}
}
