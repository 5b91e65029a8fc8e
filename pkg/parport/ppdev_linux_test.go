//go:build linux

package parport

import "testing"

// Values from linux/ppdev.h as compiled on x86/arm.
func TestIoctlNumbers(t *testing.T) {
	tests := []struct {
		name string
		got  uintptr
		want uintptr
	}{
		{"PPSETMODE", ppSetMode, 0x40047080},
		{"PPRSTATUS", ppRStatus, 0x80017081},
		{"PPRCONTROL", ppRControl, 0x80017083},
		{"PPWCONTROL", ppWControl, 0x40017084},
		{"PPRDATA", ppRData, 0x80017085},
		{"PPWDATA", ppWData, 0x40017086},
		{"PPCLAIM", ppClaim, 0x0000708b},
		{"PPRELEASE", ppRelease, 0x0000708c},
		{"PPEXCL", ppExclusive, 0x0000708f},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %#08x, want %#08x", tt.name, tt.got, tt.want)
		}
		if name := ioctlNames[tt.got]; name != tt.name {
			t.Errorf("ioctlNames[%#08x] = %q, want %q", tt.got, name, tt.name)
		}
	}
}
