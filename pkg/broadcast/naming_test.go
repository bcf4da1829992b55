package broadcast_test

import (
	"testing"

	"github.com/alkime/broadcast/pkg/broadcast"

	"github.com/stretchr/testify/require"
)

func TestRequestChannel(t *testing.T) {
	require.Equal(t, "broadcast:request:orders", broadcast.RequestChannel("orders"))
}

func TestReplyChannel(t *testing.T) {
	require.Equal(t, "broadcast:reply:orders:b1", broadcast.ReplyChannel("orders", "b1"))
}

func TestReplyChannelIsUniquePerBroadcastID(t *testing.T) {
	a := broadcast.ReplyChannel("orders", "b1")
	b := broadcast.ReplyChannel("orders", "b2")
	require.NotEqual(t, a, b)
}
