//go:build !linux

package parport

// OpenPPDev is only implemented on linux.
func OpenPPDev(path string) (Device, error) {
	return nil, ErrUnsupportedPlatform
}
