package idl_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sabouaram/govarlink/idl"
)

func TestIDL(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "idl suite")
}

const echoInterface = `interface org.varlink.example

method Echo(word: string) -> (word: string)
`

const roundTripText = `# A service.
interface com.example.test

# Foo.
method Foo(a: string, b: [](x: int, y: int)) -> (ok: bool)

type Maybe (v: ?string)
`

var _ = Describe("Parse", func() {
	It("parses a minimal interface", func() {
		i, err := idl.Parse(echoInterface)
		Expect(err).NotTo(HaveOccurred())
		Expect(i.Name).To(Equal("org.varlink.example"))
		m, ok := i.Lookup("Echo")
		Expect(ok).To(BeTrue())
		Expect(m.Kind).To(Equal(idl.MemberMethod))
	})

	It("rejects duplicate member names", func() {
		_, err := idl.Parse(`interface com.example
method Foo() -> ()
method Foo() -> ()
`)
		Expect(err).To(HaveOccurred())
	})

	It("rejects an unresolved type alias", func() {
		_, err := idl.Parse(`interface com.example
method Foo(a: Missing) -> ()
`)
		Expect(err).To(HaveOccurred())
	})

	It("resolves a recursive type alias", func() {
		i, err := idl.Parse(`interface com.example
type Tree (value: int, children: [](self: ?Tree))
`)
		Expect(err).NotTo(HaveOccurred())
		_, ok := i.Lookup("Tree")
		Expect(ok).To(BeTrue())
	})

	It("distinguishes enum from object by first-field lookahead", func() {
		i, err := idl.Parse(`interface com.example
type Color (red, green, blue)
type Point (x: int, y: int)
`)
		Expect(err).NotTo(HaveOccurred())
		color, _ := i.Lookup("Color")
		Expect(color.AliasType.Kind).To(Equal(idl.KindEnum))
		point, _ := i.Lookup("Point")
		Expect(point.AliasType.Kind).To(Equal(idl.KindObject))
	})

	It("rejects maybe(maybe(_))", func() {
		_, err := idl.ParseType("??string")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Print", func() {
	It("reproduces the canonical round-trip text byte-for-byte", func() {
		i, err := idl.Parse(roundTripText)
		Expect(err).NotTo(HaveOccurred())
		out := idl.Print(i)
		Expect(out).To(Equal(roundTripText))
	})

	It("is idempotent", func() {
		i, err := idl.Parse(roundTripText)
		Expect(err).NotTo(HaveOccurred())
		once := idl.Print(i)
		i2, err := idl.Parse(once)
		Expect(err).NotTo(HaveOccurred())
		twice := idl.Print(i2)
		Expect(twice).To(Equal(once))
	})

	It("spans an object type with more than two fields across multiple lines", func() {
		i, err := idl.Parse(`interface com.example
type Big (a: int, b: int, c: int)
`)
		Expect(err).NotTo(HaveOccurred())
		out := idl.Print(i)
		Expect(out).To(ContainSubstring("(\n    a: int,\n    b: int,\n    c: int\n)"))
	})
})
