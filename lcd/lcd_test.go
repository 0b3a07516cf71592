package lcd

import (
	"errors"
	"testing"

	"github.com/dallas-makerspace/interlock/config"
	"github.com/stretchr/testify/require"
)

type fakeBus struct {
	writes    int
	failTimes int
}

func (b *fakeBus) Write(addr uint16, data []byte) error {
	b.writes++
	if b.failTimes > 0 {
		b.failTimes--
		return errors.New("bus busy")
	}
	return nil
}

func (b *fakeBus) Read(addr uint16, n int) ([]byte, error) {
	return nil, nil
}

func TestWriteIsIdempotent(t *testing.T) {
	b := &fakeBus{}
	l := Open(b)
	rows := [2]string{"hello", "world"}
	color := config.RGB{R: 1, G: 2, B: 3}

	require.NoError(t, l.Write(rows, color))
	require.NoError(t, l.Write(rows, color))
	require.Equal(t, 1, b.writes, "repeating the same frame must not re-write the bus")
}

func TestWriteRetriesOnError(t *testing.T) {
	b := &fakeBus{failTimes: 2}
	l := Open(b)
	require.NoError(t, l.Write([2]string{"a", "b"}, config.RGB{}))
	require.Equal(t, 3, b.writes)
}

func TestWriteFailsAfterMaxRetries(t *testing.T) {
	b := &fakeBus{failTimes: 100}
	l := Open(b)
	err := l.Write([2]string{"a", "b"}, config.RGB{})
	require.Error(t, err)
}

func TestFitsRejectsOversizeRows(t *testing.T) {
	l := Open(&fakeBus{})
	require.True(t, l.Fits([2]string{"0123456789012345", ""}))
	require.False(t, l.Fits([2]string{"01234567890123456", ""}))
}
