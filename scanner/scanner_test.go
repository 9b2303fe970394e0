package scanner_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sabouaram/govarlink/scanner"
)

func TestScanner(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "scanner suite")
}

var _ = Describe("Scanner", func() {
	Context("keywords and operators", func() {
		It("reads a keyword only on exact boundary match", func() {
			s := scanner.NewInterface("interface com.example")
			Expect(s.ReadKeyword("interface")).To(BeTrue())
			name, ok := s.ExpectInterfaceName()
			Expect(ok).To(BeTrue())
			Expect(name).To(Equal("com.example"))
		})

		It("does not match a keyword that is a prefix of a longer identifier", func() {
			s := scanner.NewInterface("interfaceX")
			Expect(s.ReadKeyword("interface")).To(BeFalse())
		})

		It("expects a single-byte operator", func() {
			s := scanner.NewPlain("  :")
			Expect(s.ExpectOperator(':')).To(BeTrue())
		})

		It("records a position on the first error only", func() {
			s := scanner.NewPlain("a")
			Expect(s.ExpectOperator(':')).To(BeFalse())
			Expect(s.ExpectOperator(':')).To(BeFalse())
			Expect(s.Err()).NotTo(BeNil())
			Expect(s.Err().Position().Line).To(Equal(1))
		})
	})

	Context("strings", func() {
		It("decodes standard escapes", func() {
			s := scanner.NewPlain(`"a\nb\tc\"d"`)
			v, ok := s.ExpectString()
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal("a\nb\tc\"d"))
		})

		It("combines a surrogate pair", func() {
			s := scanner.NewPlain(`"\ud83d\ude00"`)
			v, ok := s.ExpectString()
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal("😀"))
		})

		It("rejects an unpaired high surrogate", func() {
			s := scanner.NewPlain(`"\ud83d"`)
			_, ok := s.ExpectString()
			Expect(ok).To(BeFalse())
		})

		It("rejects an embedded literal NUL", func() {
			s := scanner.NewPlain("\"a\x00b\"")
			_, ok := s.ExpectString()
			Expect(ok).To(BeFalse())
		})
	})

	Context("numbers", func() {
		It("parses a plain integer", func() {
			s := scanner.NewPlain("42")
			n, ok := s.ReadNumber()
			Expect(ok).To(BeTrue())
			Expect(n.IsFloat).To(BeFalse())
			Expect(n.Int).To(Equal(int64(42)))
		})

		It("parses a negative integer", func() {
			s := scanner.NewPlain("-7")
			n, ok := s.ReadNumber()
			Expect(ok).To(BeTrue())
			Expect(n.Int).To(Equal(int64(-7)))
		})

		It("treats a literal with '.' as a float", func() {
			s := scanner.NewPlain("3.14")
			n, ok := s.ReadNumber()
			Expect(ok).To(BeTrue())
			Expect(n.IsFloat).To(BeTrue())
			Expect(n.Float).To(BeNumerically("~", 3.14))
		})

		It("treats a literal with exponent as a float", func() {
			s := scanner.NewPlain("1e3")
			n, ok := s.ReadNumber()
			Expect(ok).To(BeTrue())
			Expect(n.IsFloat).To(BeTrue())
			Expect(n.Float).To(BeNumerically("==", 1000))
		})
	})

	Context("docstrings", func() {
		It("captures a contiguous comment block directly preceding a lexeme", func() {
			s := scanner.NewInterface("# Foo.\n# Bar.\nmethod")
			Expect(s.GetLastDocString()).To(Equal("Foo.\nBar."))
		})

		It("drops a docstring separated by a blank line", func() {
			s := scanner.NewInterface("# Foo.\n\nmethod")
			Expect(s.GetLastDocString()).To(Equal(""))
		})
	})

	Context("line/column tracking", func() {
		It("resets column at each newline", func() {
			s := scanner.NewPlain("a\nb")
			s.Peek()
			_ = s.ReadKeyword("a")
			s.Peek()
			line, col := s.Pos()
			Expect(line).To(Equal(2))
			Expect(col).To(Equal(1))
		})
	})
})

func TestNameValidation(t *testing.T) {
	ok := []string{"com.example", "org.varlink.service", "com.example.sub"}
	for _, n := range ok {
		if !scanner.ValidInterfaceName(n) {
			t.Errorf("expected %q to be a valid interface name", n)
		}
	}
	bad := []string{"a", "com", ".com.example", "com.example.", "com..example", "com.-example", "Com.example"}
	for _, n := range bad {
		if scanner.ValidInterfaceName(n) {
			t.Errorf("expected %q to be an invalid interface name", n)
		}
	}

	if !scanner.ValidMemberName("Foo") || !scanner.ValidMemberName("FooBar2") {
		t.Error("expected member names to validate")
	}
	if scanner.ValidMemberName("foo") || scanner.ValidMemberName("") {
		t.Error("expected lower-case/empty member names to fail")
	}

	if !scanner.ValidFieldName("foo_bar") || !scanner.ValidFieldName("a1") {
		t.Error("expected field names to validate")
	}
	if scanner.ValidFieldName("foo__bar") || scanner.ValidFieldName("foo_") || scanner.ValidFieldName("1foo") {
		t.Error("expected malformed field names to fail")
	}
}
