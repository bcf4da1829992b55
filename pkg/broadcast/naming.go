package broadcast

// RequestChannel is the channel name shared by every listener bound to
// name. Requesters publish one request frame per conversation on it.
func RequestChannel(name string) string {
	return "broadcast:request:" + name
}

// ReplyChannel is the channel name unique to one conversation. Only the
// requester that generated broadcastID subscribes to it; every listener
// that acks the request publishes ack/data/end frames on it.
func ReplyChannel(name, broadcastID string) string {
	return "broadcast:reply:" + name + ":" + broadcastID
}
