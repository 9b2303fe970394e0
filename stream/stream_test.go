package stream_test

import (
	"testing"

	"golang.org/x/sys/unix"

	"github.com/sabouaram/govarlink/stream"
)

func socketPair(t *testing.T) (a, b int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	return fds[0], fds[1]
}

func TestQueueFrameAndFlush(t *testing.T) {
	a, b := socketPair(t)
	defer unix.Close(a)
	defer unix.Close(b)

	s := stream.New(a)
	if err := s.QueueFrame([]byte(`{"method":"Echo"}`)); err != nil {
		t.Fatalf("QueueFrame: %v", err)
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	buf := make([]byte, 256)
	n, err := unix.Read(b, buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	got := string(buf[:n])
	want := "{\"method\":\"Echo\"}\x00"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestFillAndNextFrame(t *testing.T) {
	a, b := socketPair(t)
	defer unix.Close(a)
	defer unix.Close(b)

	if _, err := unix.Write(b, []byte("{\"a\":1}\x00{\"b\":2}\x00")); err != nil {
		t.Fatalf("write: %v", err)
	}

	s := stream.New(a)
	if err := s.Fill(); err != nil {
		t.Fatalf("Fill: %v", err)
	}

	frame, ok, err := s.NextFrame()
	if err != nil || !ok {
		t.Fatalf("NextFrame: ok=%v err=%v", ok, err)
	}
	if string(frame) != `{"a":1}` {
		t.Fatalf("got %q", frame)
	}

	frame, ok, err = s.NextFrame()
	if err != nil || !ok {
		t.Fatalf("NextFrame: ok=%v err=%v", ok, err)
	}
	if string(frame) != `{"b":2}` {
		t.Fatalf("got %q", frame)
	}

	_, ok, err = s.NextFrame()
	if err != nil || ok {
		t.Fatalf("expected no more frames, got ok=%v err=%v", ok, err)
	}
}

func TestHupOnPeerClose(t *testing.T) {
	a, b := socketPair(t)
	defer unix.Close(a)

	unix.Close(b)

	s := stream.New(a)
	if err := s.Fill(); err != nil {
		t.Fatalf("Fill: %v", err)
	}
	if !s.Hup() {
		t.Fatal("expected hup after peer close")
	}
}

func TestEventsReflectPendingOutput(t *testing.T) {
	a, _ := socketPair(t)
	defer unix.Close(a)

	s := stream.New(a)
	_, wantWrite := s.Events()
	if wantWrite {
		t.Fatal("expected no pending output initially")
	}
	if err := s.QueueFrame([]byte("x")); err != nil {
		t.Fatalf("QueueFrame: %v", err)
	}
	_, wantWrite = s.Events()
	if !wantWrite {
		t.Fatal("expected pending output after QueueFrame")
	}
}
