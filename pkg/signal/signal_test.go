package signal

import (
	"testing"

	"github.com/OpenTraceLab/OpenTracePPDev/pkg/parport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableCoversConnector(t *testing.T) {
	all := All()
	require.Len(t, all, 17)
	for i, s := range all {
		assert.Equal(t, i+1, s.Pin, "pins must be 1..17 without gaps")
		require.NoError(t, s.Spec(false).Validate(), s.Name)
	}

	// no two lines share a register bit
	seen := map[parport.BitSpec]string{}
	for _, s := range all {
		key := s.Spec(false)
		if prev, ok := seen[key]; ok {
			t.Fatalf("%s and %s share %v", prev, s.Name, key)
		}
		seen[key] = s.Name
	}
}

func TestLookup(t *testing.T) {
	s, err := Lookup("busy")
	require.NoError(t, err)
	assert.Equal(t, 11, s.Pin)
	assert.Equal(t, parport.RegStatus, s.Register)
	assert.Equal(t, uint8(7), s.Bit)
	assert.Equal(t, Input, s.Direction)

	s, err = Lookup("nStrobe")
	require.NoError(t, err)
	assert.Equal(t, "STROBE", s.Name)

	_, err = Lookup("D8")
	assert.ErrorIs(t, err, ErrUnknownSignal)
}

func TestByPinAndBit(t *testing.T) {
	s, err := ByPin(16)
	require.NoError(t, err)
	assert.Equal(t, "INIT", s.Name)

	_, err = ByPin(20)
	assert.ErrorIs(t, err, ErrUnknownSignal)

	s, ok := ByBit(parport.RegData, 5)
	require.True(t, ok)
	assert.Equal(t, "D5", s.Name)

	_, ok = ByBit(parport.RegStatus, 0)
	assert.False(t, ok, "status bits 0-2 are not wired")
}

func TestInversion(t *testing.T) {
	strobe, err := Lookup("STROBE")
	require.NoError(t, err)
	assert.False(t, strobe.Level(true))
	assert.True(t, strobe.Raw(false))

	d0, err := Lookup("D0")
	require.NoError(t, err)
	assert.True(t, d0.Level(true))
	assert.Equal(t, parport.BitSpec{Bit: 0, Register: 0, Value: 1}, d0.Spec(true))
}
