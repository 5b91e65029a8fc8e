package registry

import (
	"errors"
	"slices"
	"testing"

	"github.com/OpenTraceLab/OpenTracePPDev/pkg/parport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errIO = errors.New("EIO")

func newSimRegistry(t *testing.T) (*Registry, *parport.SimBus) {
	t.Helper()
	bus := parport.NewSimBus()
	return New(WithOpener(bus.Open), WithBasePath("/dev/parport")), bus
}

func simFor(t *testing.T, bus *parport.SimBus, path string) *parport.SimDevice {
	t.Helper()
	dev, ok := bus.Device(path)
	require.True(t, ok, "no simulator opened for %s", path)
	return dev
}

func TestOpenClaimsAndStoresAtRequestedSlot(t *testing.T) {
	reg, bus := newSimRegistry(t)

	h, err := reg.Open(3)
	require.NoError(t, err)
	assert.Equal(t, 3, h.Port())
	assert.Equal(t, "/dev/parport2", h.Path())
	assert.True(t, h.Claimed())
	assert.Equal(t, []int{3}, reg.OpenPorts())

	sim := simFor(t, bus, "/dev/parport2")
	assert.Equal(t, []parport.Op{parport.OpExclusive, parport.OpClaim, parport.OpSetMode}, sim.Calls())
	excl, claimed, closed, mode := sim.State()
	assert.True(t, excl)
	assert.True(t, claimed)
	assert.False(t, closed)
	assert.Equal(t, parport.ModeByte, mode)

	got, err := reg.Lookup(3)
	require.NoError(t, err)
	assert.Same(t, h, got)

	_, err = reg.Lookup(1)
	assert.ErrorIs(t, err, ErrNotOpen)
}

func TestOpenRejectsOutOfRangePorts(t *testing.T) {
	reg, _ := newSimRegistry(t)
	for _, port := range []int{0, 9, -1} {
		_, err := reg.Open(port)
		assert.ErrorIs(t, err, ErrPortRange, "port %d", port)
	}
	assert.Empty(t, reg.OpenPorts())
}

func TestDoubleOpenFailsAndKeepsFirstHandle(t *testing.T) {
	reg, bus := newSimRegistry(t)

	first, err := reg.Open(1)
	require.NoError(t, err)
	sim := simFor(t, bus, "/dev/parport0")

	_, err = reg.Open(1)
	require.ErrorIs(t, err, ErrAlreadyOpen)

	got, err := reg.Lookup(1)
	require.NoError(t, err)
	assert.Same(t, first, got)
	_, _, closed, _ := sim.State()
	assert.False(t, closed, "first descriptor must stay open")
}

func TestOpenUnwindsOnEveryFailingStep(t *testing.T) {
	cases := []struct {
		fail        parport.Op
		wantRelease bool
	}{
		{fail: parport.OpExclusive},
		{fail: parport.OpClaim},
		{fail: parport.OpSetMode, wantRelease: true},
	}
	for _, tc := range cases {
		t.Run(string(tc.fail), func(t *testing.T) {
			reg, bus := newSimRegistry(t)
			bus.OnOpen = func(d *parport.SimDevice) { d.Fail[tc.fail] = errIO }

			_, err := reg.Open(2)
			require.ErrorIs(t, err, errIO)
			assert.Empty(t, reg.OpenPorts())

			sim := simFor(t, bus, "/dev/parport1")
			_, claimed, closed, _ := sim.State()
			assert.False(t, claimed, "claim leaked")
			assert.True(t, closed, "descriptor leaked")

			calls := sim.Calls()
			assert.Equal(t, parport.OpClose, calls[len(calls)-1])
			assert.Equal(t, tc.wantRelease, slices.Contains(calls, parport.OpRelease))
		})
	}
}

func TestOpenReportsMissingDevice(t *testing.T) {
	bus := parport.NewSimBus("/dev/parport0")
	reg := New(WithOpener(bus.Open))

	_, err := reg.Open(2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "couldn't access port 2")
	assert.Empty(t, reg.OpenPorts())
}

func TestCloseReleasesThenCloses(t *testing.T) {
	reg, bus := newSimRegistry(t)
	_, err := reg.Open(1)
	require.NoError(t, err)

	require.NoError(t, reg.Close(1))
	sim := simFor(t, bus, "/dev/parport0")
	calls := sim.Calls()
	assert.Equal(t, []parport.Op{parport.OpRelease, parport.OpClose}, calls[len(calls)-2:])

	assert.ErrorIs(t, reg.Close(1), ErrNotOpen)
	_, err = reg.Lookup(1)
	assert.ErrorIs(t, err, ErrNotOpen)
}

func TestCloseKeepsPortWhenReleaseFails(t *testing.T) {
	reg, bus := newSimRegistry(t)
	_, err := reg.Open(4)
	require.NoError(t, err)
	sim := simFor(t, bus, "/dev/parport3")
	sim.Fail[parport.OpRelease] = errIO

	require.ErrorIs(t, reg.Close(4), errIO)
	h, err := reg.Lookup(4)
	require.NoError(t, err)
	assert.True(t, h.Claimed())
	_, _, closed, _ := sim.State()
	assert.False(t, closed, "descriptor closed despite failed release")

	delete(sim.Fail, parport.OpRelease)
	require.NoError(t, reg.Close(4))
}

func TestCloseClearsSlotWhenCloseFails(t *testing.T) {
	reg, bus := newSimRegistry(t)
	_, err := reg.Open(1)
	require.NoError(t, err)
	simFor(t, bus, "/dev/parport0").Fail[parport.OpClose] = errIO

	require.ErrorIs(t, reg.Close(1), errIO)
	assert.Empty(t, reg.OpenPorts())
}

func TestCloseAll(t *testing.T) {
	reg, _ := newSimRegistry(t)
	for _, port := range []int{1, 5, 8} {
		_, err := reg.Open(port)
		require.NoError(t, err)
	}
	require.NoError(t, reg.CloseAll())
	assert.Empty(t, reg.OpenPorts())

	for port := 1; port <= Capacity; port++ {
		assert.ErrorIs(t, reg.Close(port), ErrNotOpen, "port %d", port)
	}
	require.NoError(t, reg.CloseAll(), "CloseAll on an empty table")
}

func TestCloseAllStopsAtFirstFailure(t *testing.T) {
	reg, bus := newSimRegistry(t)
	for _, port := range []int{1, 2, 3} {
		_, err := reg.Open(port)
		require.NoError(t, err)
	}
	simFor(t, bus, "/dev/parport1").Fail[parport.OpRelease] = errIO

	require.ErrorIs(t, reg.CloseAll(), errIO)
	assert.Equal(t, []int{2, 3}, reg.OpenPorts(), "port 1 stays closed, 2 and 3 remain")
}

func TestShutdown(t *testing.T) {
	reg, _ := newSimRegistry(t)
	require.NoError(t, reg.Shutdown())

	_, err := reg.Open(6)
	require.NoError(t, err)
	require.NoError(t, reg.Shutdown())
	assert.Empty(t, reg.OpenPorts())
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, _ := newSimRegistry(t)
	b, _ := newSimRegistry(t)

	_, err := a.Open(1)
	require.NoError(t, err)
	_, err = b.Lookup(1)
	assert.ErrorIs(t, err, ErrNotOpen)
}

func TestPathFor(t *testing.T) {
	reg := New(WithBasePath("/tmp/pp"))
	path, err := reg.PathFor(8)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/pp7", path)

	_, err = reg.PathFor(0)
	assert.ErrorIs(t, err, ErrPortRange)
}
