package stream

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadWriterRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	rw := New(&buf)
	pkts := [][]byte{{0x4d}, {}, {0x40, 0x03, 0x00, 0x1f}}
	for _, pkt := range pkts {
		require.NoError(t, rw.WritePacket(pkt))
	}
	require.Equal(t, []byte{1, 0, 0, 0, 0x4d}, buf.Bytes()[:5])
	for _, want := range pkts {
		pkt, err := rw.ReadPacket()
		require.NoError(t, err)
		require.Equal(t, len(want), len(pkt))
		require.True(t, bytes.Equal(want, pkt))
	}
	_, err := rw.ReadPacket()
	require.Equal(t, io.EOF, err)
}

func TestReadPacketErrors(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
		err  error
	}{
		{"short header", []byte{1, 0}, io.ErrUnexpectedEOF},
		{"short body", []byte{3, 0, 0, 0, 1}, io.ErrUnexpectedEOF},
		{"too large", []byte{0, 0, 0, 1}, ErrPacketTooLarge},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(bytes.NewBuffer(tc.data)).ReadPacket()
			require.Equal(t, tc.err, err)
		})
	}
}
