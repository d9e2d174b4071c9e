package xmlutil

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_CDATAAndAttributes(t *testing.T) {
	el := NewElement("root").SetAttr("name", `a "b" <c>`).SetIntAttr("n", 3)
	el.Append(TextElement("text", "x ]]> y"), NullableTextElement("missing", nil))

	out := String(el)

	assert.Equal(t,
		`<root name="a &#34;b&#34; &lt;c&gt;" n="3">`+
			`<text><![CDATA[x ]]]]><![CDATA[> y]]></text>`+
			`<missing strictNull="true"></missing></root>`,
		out)

	parsed, err := ParseString(out)
	require.NoError(t, err)
	name, _ := parsed.Attr("name")
	assert.Equal(t, `a "b" <c>`, name)
	assert.Equal(t, 3, parsed.IntAttr("n", 0))

	text, ok := parsed.ChildText("text")
	assert.True(t, ok)
	assert.Equal(t, "x ]]> y", text)
}

func TestNullableText(t *testing.T) {
	empty := ""
	el := NewElement("root").Append(
		NullableTextElement("null", nil),
		NullableTextElement("empty", &empty),
	)
	parsed, err := ParseString(String(el))
	require.NoError(t, err)

	v, ok := parsed.NullableText("null")
	assert.True(t, ok)
	assert.Nil(t, v)

	v, ok = parsed.NullableText("empty")
	assert.True(t, ok)
	require.NotNil(t, v)
	assert.Equal(t, "", *v)

	_, ok = parsed.NullableText("absent")
	assert.False(t, ok)
}

func TestParse(t *testing.T) {
	t.Run("pretty printed input", func(t *testing.T) {
		parsed, err := ParseString("<root>\n  <a x=\"1\"/>\n  <a x=\"2\"/>\n</root>")
		require.NoError(t, err)

		assert.Equal(t, "", parsed.Text)
		assert.Equal(t, "", parsed.Trailing)
		require.Len(t, parsed.ChildrenNamed("a"), 2)
		assert.Equal(t, 2, parsed.ChildrenNamed("a")[1].IntAttr("x", 0))
	})

	t.Run("text after children is kept as trailing", func(t *testing.T) {
		parsed, err := ParseString("<root><a/>tail</root>")
		require.NoError(t, err)

		assert.Equal(t, "tail", parsed.Trailing)
		assert.Equal(t, "<root><a></a>tail</root>", String(parsed))
	})

	t.Run("defaults for bad attributes", func(t *testing.T) {
		parsed, err := ParseString(`<root n="x" b="maybe"/>`)
		require.NoError(t, err)

		assert.Equal(t, 7, parsed.IntAttr("n", 7))
		assert.True(t, parsed.BoolAttr("b", true))
		assert.Nil(t, parsed.Child("none"))
	})

	t.Run("empty document", func(t *testing.T) {
		_, err := ParseString("")
		assert.ErrorIs(t, err, ErrEmptyDocument)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := ParseString("<root><a></root>")
		assert.Error(t, err)
	})
}

func TestEncode_Writer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, NewElement("a").SetBoolAttr("on", true)))
	assert.Equal(t, `<a on="true"></a>`, buf.String())
}
