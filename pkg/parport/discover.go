package parport

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/gousb"
)

// DefaultBasePath is the ppdev node prefix; port N (1-based) lives at
// DefaultBasePath + strconv.Itoa(N-1).
const DefaultBasePath = "/dev/parport"

// PortKind categorizes discovered ports.
type PortKind string

const (
	PortKindPPDev PortKind = "ppdev"
	// PortKindUSB1284 is a USB printer-class bridge. Those expose a byte
	// stream through usblp, not the register interface used here.
	PortKindUSB1284 PortKind = "usb-1284"
)

// PortInfo describes a detected parallel port.
type PortInfo struct {
	Kind        PortKind
	Port        int // 1-based port number, 0 for USB bridges
	Path        string
	Description string
	VendorID    uint16
	ProductID   uint16
}

// Addressable reports whether the port can be opened by a Registry.
func (p PortInfo) Addressable() bool {
	return p.Kind == PortKindPPDev
}

// Label returns a user-friendly description for the port.
func (p PortInfo) Label() string {
	if p.Description != "" {
		return p.Description
	}
	if p.Kind == PortKindUSB1284 {
		return fmt.Sprintf("USB IEEE-1284 bridge (%04X:%04X)", p.VendorID, p.ProductID)
	}
	return p.Path
}

// DiscoverPorts lists ppdev nodes under basePath and, with includeUSB,
// USB printer-class bridges.
func DiscoverPorts(ctx context.Context, basePath string, includeUSB bool) ([]PortInfo, error) {
	if basePath == "" {
		basePath = DefaultBasePath
	}
	results, err := discoverNodes(basePath)
	if err != nil {
		return nil, err
	}
	if !includeUSB {
		return results, nil
	}
	bridges, err := discoverUSB(ctx)
	if err != nil {
		return results, err
	}
	return append(results, bridges...), nil
}

func discoverNodes(basePath string) ([]PortInfo, error) {
	matches, err := filepath.Glob(basePath + "[0-9]*")
	if err != nil {
		return nil, fmt.Errorf("parport: glob %s: %w", basePath, err)
	}
	var results []PortInfo
	for _, path := range matches {
		idx, err := strconv.Atoi(strings.TrimPrefix(path, basePath))
		if err != nil || idx < 0 {
			continue
		}
		results = append(results, PortInfo{
			Kind:        PortKindPPDev,
			Port:        idx + 1,
			Path:        path,
			Description: fmt.Sprintf("parallel port %d (%s)", idx+1, path),
		})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Port < results[j].Port })
	return results, nil
}

func discoverUSB(ctx context.Context) ([]PortInfo, error) {
	var results []PortInfo
	usb := gousb.NewContext()
	defer usb.Close()

	_, err := usb.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}
		if isPrinterClass(desc) {
			results = append(results, PortInfo{
				Kind:      PortKindUSB1284,
				Path:      fmt.Sprintf("usb:%d/%d", desc.Bus, desc.Address),
				VendorID:  uint16(desc.Vendor),
				ProductID: uint16(desc.Product),
			})
		}
		return false
	})
	if err != nil && err != gousb.ErrorAccess {
		return results, fmt.Errorf("parport: usb enumeration: %w", err)
	}
	return results, nil
}

func isPrinterClass(desc *gousb.DeviceDesc) bool {
	if desc.Class == gousb.ClassPrinter {
		return true
	}
	for _, cfg := range desc.Configs {
		for _, intf := range cfg.Interfaces {
			for _, alt := range intf.AltSettings {
				if alt.Class == gousb.ClassPrinter {
					return true
				}
			}
		}
	}
	return false
}
