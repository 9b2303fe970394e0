package value_test

import (
	"testing"

	"github.com/sabouaram/govarlink/value"
	"github.com/sabouaram/govarlink/verror"
)

func TestArrayKindEnforcement(t *testing.T) {
	a := value.NewArray()
	if err := a.Append(value.Int(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := a.Append(value.Null); err != nil {
		t.Fatalf("null should be accepted for any kind: %v", err)
	}
	if err := a.Append(value.String("x")); !verror.Is(err, verror.TypeMismatch) {
		t.Fatalf("expected TypeMismatch, got %v", err)
	}
	k, ok := a.ElementKind()
	if !ok || k != value.KindInt {
		t.Fatalf("expected fixed kind Int, got %v ok=%v", k, ok)
	}
}

func TestObjectNullRemoves(t *testing.T) {
	o := value.NewObject()
	_ = o.Set("a", value.Int(1))
	if !o.Has("a") {
		t.Fatal("expected field a to be set")
	}
	_ = o.Set("a", value.Null)
	if o.Has("a") {
		t.Fatal("expected setting field to null to remove it")
	}
}

func TestFrozenRejectsMutation(t *testing.T) {
	a := value.NewArray()
	_ = a.Append(value.Int(1))
	a.Freeze()
	if err := a.Append(value.Int(2)); !verror.Is(err, verror.ReadOnly) {
		t.Fatalf("expected ReadOnly, got %v", err)
	}

	o := value.NewObject()
	_ = o.Set("a", value.Int(1))
	o.Freeze()
	if err := o.Set("b", value.Int(2)); !verror.Is(err, verror.ReadOnly) {
		t.Fatalf("expected ReadOnly, got %v", err)
	}
}

func TestDecodeDropsNullFields(t *testing.T) {
	v, err := value.Decode(`{"a":1,"b":null,"c":"x"}`)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	obj, ok := v.Object()
	if !ok {
		t.Fatal("expected object")
	}
	if obj.Has("b") {
		t.Fatal("expected null field to be dropped")
	}
	if obj.Len() != 2 {
		t.Fatalf("expected 2 fields, got %d", obj.Len())
	}
}

func TestDecodeRejectsTrailingComma(t *testing.T) {
	if _, err := value.Decode(`[1,2,]`); err == nil {
		t.Fatal("expected error for trailing comma in array")
	}
	if _, err := value.Decode(`{"a":1,}`); err == nil {
		t.Fatal("expected error for trailing comma in object")
	}
}

func TestObjectOrderingIsLexicographic(t *testing.T) {
	v, err := value.Decode(`{"zeta":1,"alpha":2,"mid":3}`)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	obj, _ := v.Object()
	names := obj.Names()
	want := []string{"alpha", "mid", "zeta"}
	for i, n := range want {
		if names[i] != n {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	cases := []string{
		`null`,
		`true`,
		`false`,
		`42`,
		`-7`,
		`3.14`,
		`"hello world"`,
		`"with \"quotes\" and \\backslash\\"`,
		`[]`,
		`[1,2,3]`,
		`{}`,
		`{"a":1,"b":[1,2,{"c":true}]}`,
	}
	for _, c := range cases {
		v, err := value.Decode(c)
		if err != nil {
			t.Fatalf("decode(%q) failed: %v", c, err)
		}
		enc := value.Encode(v)
		v2, err := value.Decode(enc)
		if err != nil {
			t.Fatalf("re-decode(%q) failed: %v", enc, err)
		}
		if !value.Equal(v, v2) {
			t.Fatalf("round-trip mismatch for %q: got %q", c, enc)
		}
	}
}

func TestEncodeEscapesControlChars(t *testing.T) {
	got := value.Encode(value.String("a\x01b"))
	want := "\"a\\u0001b\""
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestEncodeIndent(t *testing.T) {
	v, _ := value.Decode(`{"a":1}`)
	got := value.EncodeIndent(v, 2)
	want := "{\n  \"a\": 1\n}"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestMarkup(t *testing.T) {
	v, _ := value.Decode(`{"a":1}`)
	got := value.EncodeWithOptions(v, value.EncodeOptions{
		Markup: value.Markup{KeyPre: "<k>", KeyPost: "</k>", ValuePre: "<v>", ValuePost: "</v>"},
	})
	want := `{"<k>a</k>":<v>1</v>}`
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestMaxDepth(t *testing.T) {
	open := ""
	for i := 0; i < value.MaxDepth+10; i++ {
		open += "["
	}
	if _, err := value.Decode(open); !verror.Is(err, verror.InvalidJson) {
		t.Fatalf("expected InvalidJson for excessive nesting, got %v", err)
	}
}

func TestDecodeEncodeStructBridge(t *testing.T) {
	type word struct {
		Word string `varlink:"word"`
	}
	v, _ := value.Decode(`{"word":"hi"}`)
	var w word
	if err := value.Bind(v, &w); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if w.Word != "hi" {
		t.Fatalf("got %q", w.Word)
	}
}
