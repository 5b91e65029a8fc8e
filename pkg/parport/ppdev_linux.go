//go:build linux

package parport

import (
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	iocNone  = 0
	iocWrite = 1
	iocRead  = 2

	iocNRShift   = 0
	iocTypeShift = 8
	iocSizeShift = 16
	iocDirShift  = 30

	ppIOCTL = 'p'
)

func ioc(dir, nr, size uintptr) uintptr {
	return dir<<iocDirShift | ppIOCTL<<iocTypeShift | nr<<iocNRShift | size<<iocSizeShift
}

func iocIO(nr uintptr) uintptr { return ioc(iocNone, nr, 0) }

func iocIOR(nr, size uintptr) uintptr { return ioc(iocRead, nr, size) }

func iocIOW(nr, size uintptr) uintptr { return ioc(iocWrite, nr, size) }

// linux/ppdev.h
var (
	ppSetMode   = iocIOW(0x80, 4)
	ppRStatus   = iocIOR(0x81, 1)
	ppRControl  = iocIOR(0x83, 1)
	ppWControl  = iocIOW(0x84, 1)
	ppRData     = iocIOR(0x85, 1)
	ppWData     = iocIOW(0x86, 1)
	ppClaim     = iocIO(0x8b)
	ppRelease   = iocIO(0x8c)
	ppExclusive = iocIO(0x8f)
)

var ioctlNames = map[uintptr]string{
	ppSetMode:   "PPSETMODE",
	ppRStatus:   "PPRSTATUS",
	ppRControl:  "PPRCONTROL",
	ppWControl:  "PPWCONTROL",
	ppRData:     "PPRDATA",
	ppWData:     "PPWDATA",
	ppClaim:     "PPCLAIM",
	ppRelease:   "PPRELEASE",
	ppExclusive: "PPEXCL",
}

// PPDev is a parallel port reached through the Linux ppdev character device
// (/dev/parportN).
type PPDev struct {
	path string

	mu sync.Mutex
	fd int
}

// OpenPPDev opens path read-write. It satisfies Opener.
func OpenPPDev(path string) (Device, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("parport: open %s: %w", path, err)
	}
	return &PPDev{path: path, fd: fd}, nil
}

// Path returns the device node this handle was opened from.
func (p *PPDev) Path() string { return p.path }

func (p *PPDev) Exclusive() error { return p.ioctl(ppExclusive, nil) }

func (p *PPDev) Claim() error { return p.ioctl(ppClaim, nil) }

func (p *PPDev) Release() error { return p.ioctl(ppRelease, nil) }

func (p *PPDev) SetMode(mode Mode) error {
	m := int32(mode)
	return p.ioctl(ppSetMode, unsafe.Pointer(&m))
}

func (p *PPDev) ReadRegister(r Register) (byte, error) {
	var req uintptr
	switch r {
	case RegData:
		req = ppRData
	case RegStatus:
		req = ppRStatus
	case RegControl:
		req = ppRControl
	default:
		return 0, fmt.Errorf("%w (read %s)", ErrECRUnsupported, r)
	}
	var b byte
	if err := p.ioctl(req, unsafe.Pointer(&b)); err != nil {
		return 0, err
	}
	return b, nil
}

func (p *PPDev) WriteRegister(r Register, b byte) error {
	var req uintptr
	switch r {
	case RegData:
		req = ppWData
	case RegControl:
		req = ppWControl
	case RegStatus:
		return ErrStatusReadOnly
	default:
		return fmt.Errorf("%w (write %s)", ErrECRUnsupported, r)
	}
	return p.ioctl(req, unsafe.Pointer(&b))
}

// Close closes the descriptor. It does not release a claim.
func (p *PPDev) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fd < 0 {
		return ErrClosed
	}
	err := unix.Close(p.fd)
	p.fd = -1
	if err != nil {
		return fmt.Errorf("parport: close %s: %w", p.path, err)
	}
	return nil
}

// ioctl holds mu across the call so Close cannot release the descriptor
// number while a request is in flight.
func (p *PPDev) ioctl(req uintptr, arg unsafe.Pointer) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fd < 0 {
		return ErrClosed
	}
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(p.fd), req, uintptr(arg))
	if errno != 0 {
		return fmt.Errorf("parport: %s on %s: %w", ioctlNames[req], p.path, errno)
	}
	return nil
}
