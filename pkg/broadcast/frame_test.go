package broadcast_test

import (
	"testing"

	"github.com/alkime/broadcast/pkg/broadcast"

	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	cases := []broadcast.Frame{
		{Type: broadcast.FrameRequest, Host: "host-a", BroadcastID: "b1", Body: []byte("hello")},
		{Type: broadcast.FrameAck, Host: "host-a"},
		{Type: broadcast.FrameData, Host: "host-a", Body: []byte{0x00, 0xff, 0x10}},
		{Type: broadcast.FrameEnd, Host: "host-a"},
	}

	for _, f := range cases {
		encoded, err := broadcast.EncodeFrame(f)
		require.NoError(t, err)

		decoded, err := broadcast.DecodeFrame(encoded)
		require.NoError(t, err)
		require.Equal(t, f, decoded)
	}
}

func TestDecodeFrameUnknownTypeSucceeds(t *testing.T) {
	encoded, err := broadcast.EncodeFrame(broadcast.Frame{Type: "future", Host: "host-a"})
	require.NoError(t, err)

	decoded, err := broadcast.DecodeFrame(encoded)
	require.NoError(t, err)
	require.EqualValues(t, "future", decoded.Type)
}

func TestDecodeFrameInvalidJSON(t *testing.T) {
	_, err := broadcast.DecodeFrame([]byte("not json"))
	require.Error(t, err)
}
