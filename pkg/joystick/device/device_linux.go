// +build linux

package device

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"syscall"
	"unsafe"
)

// MaxDevices bounds the scan of DetectAndOpen.
const MaxDevices = 32

const (
	iocGAXES    uint = 0x80016a11
	iocGBUTTONS uint = 0x80016a12
	iocGNAME    uint = 0x80006a13 // length in bits 16-29

	evBTN  uint8 = 0x01
	evAXIS uint8 = 0x02
	evINIT uint8 = 0x80

	eventSize = 8
)

// DevicePath returns the device file of a joystick index.
func DevicePath(index int) string {
	return fmt.Sprintf("/dev/input/js%d", index)
}

type jsDevice struct {
	file    *os.File
	index   int
	name    string
	axes    uint8
	buttons uint8
	buf     [eventSize]byte
}

// Open opens the joystick with index and queries its capabilities.
func Open(index int) (Device, error) {
	f, err := os.OpenFile(DevicePath(index), os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	d := &jsDevice{file: f, index: index}
	var name [128]byte
	for _, q := range []struct {
		req uint
		ptr unsafe.Pointer
	}{
		{iocGAXES, unsafe.Pointer(&d.axes)},
		{iocGBUTTONS, unsafe.Pointer(&d.buttons)},
		{iocGNAME | uint(len(name))<<16, unsafe.Pointer(&name)},
	} {
		if errno := d.ioctl(q.req, q.ptr); errno != 0 {
			f.Close()
			return nil, fmt.Errorf("%s: %v", DevicePath(index), errno)
		}
	}
	if n := bytes.IndexByte(name[:], 0); n >= 0 {
		d.name = string(name[:n])
	} else {
		d.name = string(name[:])
	}
	return d, nil
}

// DetectAndOpen opens the first joystick at or after startIndex.
func DetectAndOpen(startIndex int) (Device, error) {
	for index := startIndex; index < MaxDevices; index++ {
		d, err := Open(index)
		if os.IsNotExist(err) {
			continue
		}
		return d, err
	}
	return nil, ErrNoDevice
}

func (d *jsDevice) Close() error     { return d.file.Close() }
func (d *jsDevice) Index() int       { return d.index }
func (d *jsDevice) Name() string     { return d.name }
func (d *jsDevice) AxisCount() int   { return int(d.axes) }
func (d *jsDevice) ButtonCount() int { return int(d.buttons) }

// ReadEvent implements Device. The kernel event is
// {u32 time_ms; s16 value; u8 type; u8 number}.
func (d *jsDevice) ReadEvent() (Event, error) {
	if _, err := io.ReadFull(d.file, d.buf[:]); err != nil {
		return nil, err
	}
	ev := rawEvent{
		value:  int16(binary.LittleEndian.Uint16(d.buf[4:])),
		kind:   d.buf[6],
		number: d.buf[7],
	}
	switch ev.kind &^ evINIT {
	case evAXIS:
		return axisEvent{ev}, nil
	case evBTN:
		return buttonEvent{ev}, nil
	}
	return nil, nil
}

func (d *jsDevice) ioctl(req uint, ptr unsafe.Pointer) syscall.Errno {
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, d.file.Fd(), uintptr(req), uintptr(ptr))
	return errno
}

type rawEvent struct {
	value  int16
	kind   uint8
	number uint8
}

func (e rawEvent) IsInit() bool { return e.kind&evINIT != 0 }
func (e rawEvent) Index() int   { return int(e.number) }

type axisEvent struct{ rawEvent }

// Value clamps -32768 so both directions share the same range.
func (e axisEvent) Value() int {
	if v := int(e.value); v >= -AxisMax {
		return v
	}
	return -AxisMax
}

type buttonEvent struct{ rawEvent }

func (e buttonEvent) Pressed() bool { return e.value != 0 }
