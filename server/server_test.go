package server_test

import (
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/sabouaram/govarlink/idl"
	"github.com/sabouaram/govarlink/message"
	"github.com/sabouaram/govarlink/server"
	"github.com/sabouaram/govarlink/serviceopts"
	"github.com/sabouaram/govarlink/transport"
	"github.com/sabouaram/govarlink/value"
)

func startService(t *testing.T, addr string, opts ...serviceopts.Option) *server.Service {
	t.Helper()
	s := server.New(opts...)
	if err := s.Listen(addr); err != nil {
		t.Fatalf("Listen: %v", err)
	}
	go s.Serve()
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func dial(t *testing.T, addr string) int {
	t.Helper()
	fd, err := transport.Connect(addr)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { _ = unix.Close(fd) })
	return fd
}

func sendCall(t *testing.T, fd int, c message.Call) {
	t.Helper()
	raw, err := message.PackCall(c)
	if err != nil {
		t.Fatalf("PackCall: %v", err)
	}
	if err := writeFrame(fd, raw); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func writeFrame(fd int, raw []byte) error {
	buf := append(append([]byte{}, raw...), 0)
	for len(buf) > 0 {
		n, err := unix.Write(fd, buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				continue
			}
			return err
		}
		buf = buf[n:]
	}
	return nil
}

// leftover holds bytes read past the last returned frame, per fd.
var leftover = map[int][]byte{}

// readFrame polls fd until one complete NUL-terminated frame arrives, or
// fails the test after a short deadline. Bytes after that frame are kept
// for the next call on the same fd.
func readFrame(t *testing.T, fd int) message.Reply {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	buf := leftover[fd]
	delete(leftover, fd)
	tmp := make([]byte, 4096)
	for time.Now().Before(deadline) {
		if idx := indexNul(buf); idx >= 0 {
			leftover[fd] = buf[idx+1:]
			r, err := message.UnpackReply(buf[:idx])
			if err != nil {
				t.Fatalf("UnpackReply: %v", err)
			}
			return r
		}
		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		if _, err := unix.Poll(fds, 100); err != nil && err != unix.EINTR {
			t.Fatalf("poll: %v", err)
		}
		n, err := unix.Read(fd, tmp)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				continue
			}
			t.Fatalf("read: %v", err)
		}
		buf = append(buf, tmp[:n]...)
	}
	t.Fatal("timed out waiting for reply")
	return message.Reply{}
}

func indexNul(b []byte) int {
	for i, c := range b {
		if c == 0 {
			return i
		}
	}
	return -1
}

func TestGetInfoReturnsIdentityAndInterfaces(t *testing.T) {
	startService(t, "unix:@govarlink-test-getinfo",
		serviceopts.WithVendor("Example"), serviceopts.WithProduct("Demo"), serviceopts.WithVersion("1.0"))
	fd := dial(t, "unix:@govarlink-test-getinfo")

	sendCall(t, fd, message.Call{Method: server.BuiltinInterfaceName + ".GetInfo", Parameters: value.Null})
	reply := readFrame(t, fd)
	if reply.Error != "" {
		t.Fatalf("unexpected error reply: %+v", reply)
	}
	obj, ok := reply.Parameters.Object()
	if !ok {
		t.Fatal("expected object parameters")
	}
	vendor, _ := obj.Get("vendor")
	if s, _ := vendor.String(); s != "Example" {
		t.Fatalf("got vendor %q", s)
	}
}

func TestMethodNotFoundSyntheticError(t *testing.T) {
	startService(t, "unix:@govarlink-test-notfound")
	fd := dial(t, "unix:@govarlink-test-notfound")

	sendCall(t, fd, message.Call{Method: server.BuiltinInterfaceName + ".NoSuchMethod", Parameters: value.Null})
	reply := readFrame(t, fd)
	if reply.Error != server.BuiltinInterfaceName+".MethodNotFound" {
		t.Fatalf("got error %q", reply.Error)
	}
}

func TestInterfaceNotFoundSyntheticError(t *testing.T) {
	startService(t, "unix:@govarlink-test-ifacenotfound")
	fd := dial(t, "unix:@govarlink-test-ifacenotfound")

	sendCall(t, fd, message.Call{Method: "com.example.Missing.Method", Parameters: value.Null})
	reply := readFrame(t, fd)
	if reply.Error != server.BuiltinInterfaceName+".InterfaceNotFound" {
		t.Fatalf("got error %q", reply.Error)
	}
}

func TestGetInterfaceDescriptionRendersRegisteredInterface(t *testing.T) {
	s := startService(t, "unix:@govarlink-test-describe")

	iface, err := idl.NewInterface("com.example.calc", "")
	if err != nil {
		t.Fatalf("NewInterface: %v", err)
	}
	in, _ := idl.ObjectOf([]idl.Field{{Name: "a", Type: idl.Int()}})
	out, _ := idl.ObjectOf([]idl.Field{{Name: "sum", Type: idl.Int()}})
	_ = iface.AddMember(idl.Member{Kind: idl.MemberMethod, Name: "Add", In: in, Out: out})
	if err := s.RegisterInterface(iface); err != nil {
		t.Fatalf("RegisterInterface: %v", err)
	}

	fd := dial(t, "unix:@govarlink-test-describe")
	params := value.NewObject()
	_ = params.Set("interface", value.String("com.example.calc"))
	sendCall(t, fd, message.Call{
		Method:     server.BuiltinInterfaceName + ".GetInterfaceDescription",
		Parameters: value.FromObject(params),
	})
	reply := readFrame(t, fd)
	if reply.Error != "" {
		t.Fatalf("unexpected error reply: %+v", reply)
	}
	obj, _ := reply.Parameters.Object()
	desc, _ := obj.Get("description")
	text, _ := desc.String()
	if text == "" {
		t.Fatal("expected non-empty rendered interface description")
	}
}

func TestHandlerCallReceivesParametersAndReplies(t *testing.T) {
	s := startService(t, "unix:@govarlink-test-handler")

	iface, _ := idl.NewInterface("com.example.echo", "")
	in, _ := idl.ObjectOf([]idl.Field{{Name: "word", Type: idl.String()}})
	out, _ := idl.ObjectOf([]idl.Field{{Name: "word", Type: idl.String()}})
	_ = iface.AddMember(idl.Member{Kind: idl.MemberMethod, Name: "Echo", In: in, Out: out})
	if err := s.RegisterInterface(iface); err != nil {
		t.Fatalf("RegisterInterface: %v", err)
	}
	s.Handle("com.example.echo.Echo", func(call *server.Call) error {
		params, _ := call.Params.Object()
		word, _ := params.Get("word")
		out := value.NewObject()
		_ = out.Set("word", word)
		return call.Reply(value.FromObject(out))
	})

	fd := dial(t, "unix:@govarlink-test-handler")
	params := value.NewObject()
	_ = params.Set("word", value.String("hello"))
	sendCall(t, fd, message.Call{Method: "com.example.echo.Echo", Parameters: value.FromObject(params)})

	reply := readFrame(t, fd)
	if reply.Error != "" {
		t.Fatalf("unexpected error reply: %+v", reply)
	}
	obj, _ := reply.Parameters.Object()
	word, _ := obj.Get("word")
	if s, _ := word.String(); s != "hello" {
		t.Fatalf("got word %q", s)
	}
}

func TestStreamingReplyCarriesContinuesThenTerminal(t *testing.T) {
	s := startService(t, "unix:@govarlink-test-stream")

	iface, _ := idl.NewInterface("com.example.stream", "")
	in, _ := idl.ObjectOf(nil)
	out, _ := idl.ObjectOf([]idl.Field{{Name: "n", Type: idl.Int()}})
	_ = iface.AddMember(idl.Member{Kind: idl.MemberMethod, Name: "Count", In: in, Out: out})
	if err := s.RegisterInterface(iface); err != nil {
		t.Fatalf("RegisterInterface: %v", err)
	}
	s.Handle("com.example.stream.Count", func(call *server.Call) error {
		p1 := value.NewObject()
		_ = p1.Set("n", value.Int(1))
		if err := call.ReplyContinues(value.FromObject(p1)); err != nil {
			return err
		}
		p2 := value.NewObject()
		_ = p2.Set("n", value.Int(2))
		return call.Reply(value.FromObject(p2))
	})

	fd := dial(t, "unix:@govarlink-test-stream")
	sendCall(t, fd, message.Call{Method: "com.example.stream.Count", Parameters: value.Null, Flags: message.More})

	first := readFrame(t, fd)
	if first.Flags&message.Continues == 0 {
		t.Fatalf("expected continues flag on first reply, got %+v", first)
	}
	second := readFrame(t, fd)
	if second.Flags&message.Continues != 0 {
		t.Fatalf("expected terminal reply, got %+v", second)
	}
}

func TestOnewayCallReceivesNoReply(t *testing.T) {
	s := startService(t, "unix:@govarlink-test-oneway")

	iface, _ := idl.NewInterface("com.example.fire", "")
	in, _ := idl.ObjectOf(nil)
	out, _ := idl.ObjectOf(nil)
	_ = iface.AddMember(idl.Member{Kind: idl.MemberMethod, Name: "Forget", In: in, Out: out})
	if err := s.RegisterInterface(iface); err != nil {
		t.Fatalf("RegisterInterface: %v", err)
	}
	called := make(chan struct{}, 1)
	s.Handle("com.example.fire.Forget", func(call *server.Call) error {
		called <- struct{}{}
		return call.Reply(value.Null)
	})

	fd := dial(t, "unix:@govarlink-test-oneway")
	sendCall(t, fd, message.Call{Method: "com.example.fire.Forget", Parameters: value.Null, Flags: message.Oneway})

	select {
	case <-called:
	case <-time.After(2 * time.Second):
		t.Fatal("handler was never invoked")
	}

	// A oneway call receives no reply, and a second call on the same
	// connection must be serviced immediately rather than blocked behind
	// the first.
	sendCall(t, fd, message.Call{Method: server.BuiltinInterfaceName + ".GetInfo", Parameters: value.Null})
	reply := readFrame(t, fd)
	if reply.Error != "" {
		t.Fatalf("unexpected error reply: %+v", reply)
	}
}
