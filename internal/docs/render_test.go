package docs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignatures(t *testing.T) {
	t.Parallel()

	d := Encoder{}.ClassDocument(mustParseFixture(t, "com/example/ui/Widget.html"))

	assert.Equal(t, "public abstract class Widget extends Base", d.Declaration())
	assert.Equal(t, "public static final java.lang.String NAME", d.Fields[0].Signature())
	assert.Equal(t, "protected final java.util.List<T> items", d.Fields[2].Signature())
	assert.Equal(t, "public Widget()", d.Constructors[0].Signature(d.Name))
	assert.Equal(t, "protected Widget(java.lang.String name, int count)", d.Constructors[1].Signature(d.Name))
	assert.Equal(t,
		"public java.util.List<T> find(java.util.Map<java.lang.String,java.lang.Integer> filters, int limit)",
		d.Methods[1].Signature())
	assert.Equal(t, "public int size()", d.Methods[3].Signature())

	legacy := Encoder{}.ClassDocument(mustParseFixture(t, "com/example/legacy/Legacy.html"))
	assert.Equal(t, "void run()", legacy.Methods[0].Signature())
	assert.Equal(t, "public interface Legacy", legacy.Declaration())
}
