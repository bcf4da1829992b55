// Package broadcast implements a one-to-many broadcast request/reply
// conversation protocol layered on top of an abstract publish/subscribe
// channel substrate (the Bus interface).
//
// A Requester issues a named broadcast; any number of Listeners receive
// it, acknowledge, stream back reply frames, and signal completion. The
// Requester aggregates per-host replies into a Conversation, enforcing a
// connect timeout and an idle timeout against a dynamically updated set
// of hosts it is still awaiting, and delivers an ordered event stream to
// its consumer.
package broadcast
