package message_test

import (
	"testing"

	"github.com/sabouaram/govarlink/message"
	"github.com/sabouaram/govarlink/value"
)

func TestPackUnpackCallRoundTrip(t *testing.T) {
	params := value.NewObject()
	if err := params.Set("word", value.String("hello")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	c := message.Call{
		Method:     "org.varlink.example.Echo",
		Parameters: value.FromObject(params),
		Flags:      message.More,
	}
	raw, err := message.PackCall(c)
	if err != nil {
		t.Fatalf("PackCall: %v", err)
	}

	got, err := message.UnpackCall(raw)
	if err != nil {
		t.Fatalf("UnpackCall: %v", err)
	}
	if got.Method != c.Method || got.Flags != c.Flags {
		t.Fatalf("got %+v", got)
	}
	word, ok := got.Parameters.Object()
	if !ok {
		t.Fatal("expected object parameters")
	}
	wv, _ := word.Get("word")
	if s, _ := wv.String(); s != "hello" {
		t.Fatalf("got word %q", s)
	}
}

func TestPackCallRejectsMoreAndOneway(t *testing.T) {
	_, err := message.PackCall(message.Call{Method: "M", Flags: message.More | message.Oneway})
	if err == nil {
		t.Fatal("expected InvalidCall error")
	}
}

func TestUnpackCallRejectsMoreAndOneway(t *testing.T) {
	_, err := message.UnpackCall([]byte(`{"method":"M","more":true,"oneway":true}`))
	if err == nil {
		t.Fatal("expected InvalidCall error")
	}
}

func TestUnpackCallRequiresMethod(t *testing.T) {
	_, err := message.UnpackCall([]byte(`{}`))
	if err == nil {
		t.Fatal("expected InvalidMessage error")
	}
}

func TestPackUnpackReplyRoundTrip(t *testing.T) {
	params := value.NewObject()
	if err := params.Set("word", value.String("hi")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	r := message.Reply{Parameters: value.FromObject(params), Flags: message.Continues}
	raw, err := message.PackReply(r)
	if err != nil {
		t.Fatalf("PackReply: %v", err)
	}
	got, err := message.UnpackReply(raw)
	if err != nil {
		t.Fatalf("UnpackReply: %v", err)
	}
	if got.Error != "" || got.Flags != message.Continues {
		t.Fatalf("got %+v", got)
	}
}

func TestUnpackReplyWithError(t *testing.T) {
	got, err := message.UnpackReply([]byte(`{"error":"org.varlink.service.MethodNotFound"}`))
	if err != nil {
		t.Fatalf("UnpackReply: %v", err)
	}
	if got.Error != "org.varlink.service.MethodNotFound" {
		t.Fatalf("got %+v", got)
	}
}
