package uri_test

import (
	"testing"

	"github.com/sabouaram/govarlink/uri"
)

func TestParseUnix(t *testing.T) {
	u, err := uri.Parse("unix:/run/org.varlink.service", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Transport != uri.TransportUnix || u.Path != "/run/org.varlink.service" {
		t.Fatalf("got %+v", u)
	}
}

func TestParseUnixAbstract(t *testing.T) {
	u, err := uri.Parse("unix:@org.varlink.test", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Path[0] != 0 || u.Path[1:] != "org.varlink.test" {
		t.Fatalf("got path %q", u.Path)
	}
}

func TestParseUnixMode(t *testing.T) {
	u, err := uri.Parse("unix:/run/foo.sock;mode=0600", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Mode != 0600 {
		t.Fatalf("got mode %o", u.Mode)
	}
}

func TestParseTCP(t *testing.T) {
	u, err := uri.Parse("tcp:127.0.0.1:8080", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Host != "127.0.0.1" || u.Port != 8080 {
		t.Fatalf("got %+v", u)
	}
}

func TestParseTCPBracketedIPv6(t *testing.T) {
	u, err := uri.Parse("tcp:[::1]:8080", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Host != "::1" || u.Port != 8080 {
		t.Fatalf("got %+v", u)
	}
}

func TestParseTCPUnbracketedIPv6Fails(t *testing.T) {
	if _, err := uri.Parse("tcp:::1:8080", false); err == nil {
		t.Fatal("expected error for unbracketed IPv6 host")
	}
}

func TestParseDevice(t *testing.T) {
	u, err := uri.Parse("device:/dev/ttyS0", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Transport != uri.TransportDevice || u.Path != "/dev/ttyS0" {
		t.Fatalf("got %+v", u)
	}
}

func TestParseContainerForm(t *testing.T) {
	u, err := uri.Parse("varlink://unix:%2Frun%2Ffoo.sock/org.varlink.example.Echo", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Transport != uri.TransportUnix || u.Path != "/run/foo.sock" {
		t.Fatalf("got %+v", u)
	}
	if u.Interface != "org.varlink.example" || u.Member != "Echo" {
		t.Fatalf("got interface=%q member=%q", u.Interface, u.Member)
	}
}

func TestParseInterfaceForm(t *testing.T) {
	u, err := uri.Parse("org.varlink.example.Echo", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Interface != "org.varlink.example" || u.Member != "Echo" {
		t.Fatalf("got %+v", u)
	}
}

func TestParseInvalid(t *testing.T) {
	if _, err := uri.Parse("bogus-address", false); err == nil {
		t.Fatal("expected an error for an unrecognised address")
	}
}
