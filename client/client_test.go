package client

import (
	"testing"

	"golang.org/x/sys/unix"

	"github.com/sabouaram/govarlink/message"
	"github.com/sabouaram/govarlink/stream"
	"github.com/sabouaram/govarlink/value"
)

func socketPair(t *testing.T) (a, b int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	return fds[0], fds[1]
}

func newTestConnection(fd int) *Connection {
	return &Connection{stream: stream.New(fd)}
}

func TestCallQueuesAndFlushesFrame(t *testing.T) {
	a, b := socketPair(t)
	defer unix.Close(a)
	defer unix.Close(b)

	c := newTestConnection(a)
	if err := c.Call("org.varlink.example.Echo", value.Null, 0, nil); err != nil {
		t.Fatalf("Call: %v", err)
	}

	buf := make([]byte, 256)
	n, err := unix.Read(b, buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	got, err := message.UnpackCall(buf[:n-1])
	if err != nil {
		t.Fatalf("UnpackCall: %v", err)
	}
	if got.Method != "org.varlink.example.Echo" {
		t.Fatalf("got method %q", got.Method)
	}
	if len(c.pending) != 1 {
		t.Fatalf("expected one pending call, got %d", len(c.pending))
	}
}

func TestCallRejectsMoreAndOneway(t *testing.T) {
	a, b := socketPair(t)
	defer unix.Close(a)
	defer unix.Close(b)

	c := newTestConnection(a)
	err := c.Call("M", value.Null, message.More|message.Oneway, nil)
	if err == nil {
		t.Fatal("expected InvalidCall error")
	}
}

func TestOnewayCallHasNoPendingEntry(t *testing.T) {
	a, b := socketPair(t)
	defer unix.Close(a)
	defer unix.Close(b)

	c := newTestConnection(a)
	if err := c.Call("M", value.Null, message.Oneway, nil); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if len(c.pending) != 0 {
		t.Fatalf("expected no pending entry for oneway call, got %d", len(c.pending))
	}
}

func TestDeliverInvokesFIFOCallbacksInOrder(t *testing.T) {
	a, b := socketPair(t)
	defer unix.Close(a)
	defer unix.Close(b)

	c := newTestConnection(a)

	var order []string
	mk := func(name string) ReplyFunc {
		return func(reply message.Reply, more bool) { order = append(order, name) }
	}
	c.pending = []pendingCall{{fn: mk("first")}, {fn: mk("second")}}

	r1, _ := message.PackReply(message.Reply{Parameters: value.Null})
	r2, _ := message.PackReply(message.Reply{Parameters: value.Null})
	if _, err := unix.Write(b, append(append(r1, 0), append(r2, 0)...)); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := c.stream.Fill(); err != nil {
		t.Fatalf("Fill: %v", err)
	}
	if err := c.deliver(); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("got order %v", order)
	}
	if len(c.pending) != 0 {
		t.Fatalf("expected pending queue drained, got %d", len(c.pending))
	}
}

func TestDeliverKeepsPendingOnContinues(t *testing.T) {
	a, b := socketPair(t)
	defer unix.Close(a)
	defer unix.Close(b)

	c := newTestConnection(a)

	var mores []bool
	c.pending = []pendingCall{{flags: message.More, fn: func(reply message.Reply, more bool) {
		mores = append(mores, more)
	}}}

	r1, _ := message.PackReply(message.Reply{Parameters: value.Null, Flags: message.Continues})
	if _, err := unix.Write(b, append(r1, 0)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := c.stream.Fill(); err != nil {
		t.Fatalf("Fill: %v", err)
	}
	if err := c.deliver(); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if len(c.pending) != 1 {
		t.Fatal("expected pending entry to survive a continues reply")
	}
	if len(mores) != 1 || !mores[0] {
		t.Fatalf("expected more=true, got %v", mores)
	}
}

func TestDeliverRejectsContinuesWithoutMore(t *testing.T) {
	a, b := socketPair(t)
	defer unix.Close(a)
	defer unix.Close(b)

	c := newTestConnection(a)
	c.pending = []pendingCall{{fn: func(message.Reply, bool) {}}}

	r1, _ := message.PackReply(message.Reply{Parameters: value.Null, Flags: message.Continues})
	if _, err := unix.Write(b, append(r1, 0)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := c.stream.Fill(); err != nil {
		t.Fatalf("Fill: %v", err)
	}
	if err := c.deliver(); err == nil {
		t.Fatal("expected InvalidMessage for continues without more")
	}
}

func TestDeliverRejectsReplyWithNoPendingCall(t *testing.T) {
	a, b := socketPair(t)
	defer unix.Close(a)
	defer unix.Close(b)

	c := newTestConnection(a)

	r1, _ := message.PackReply(message.Reply{Parameters: value.Null})
	if _, err := unix.Write(b, append(r1, 0)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := c.stream.Fill(); err != nil {
		t.Fatalf("Fill: %v", err)
	}
	if err := c.deliver(); err == nil {
		t.Fatal("expected InvalidMessage for unexpected reply")
	}
}
