package parport

import "errors"

var (
	ErrBadBitSpec          = errors.New("parport: bit must be 0-7, register 0-2, value 0-1")
	ErrValueRange          = errors.New("parport: value out of range 0-255")
	ErrECRUnsupported      = errors.New("parport: ECR not supported under ppdev")
	ErrStatusReadOnly      = errors.New("parport: status register is read-only")
	ErrControlBits         = errors.New("parport: only control bits 0-3 are writable")
	ErrOutputRequired      = errors.New("parport: reading requires an output")
	ErrUnsupportedPlatform = errors.New("parport: ppdev is only available on linux")
	ErrClosed              = errors.New("parport: device closed")
)
