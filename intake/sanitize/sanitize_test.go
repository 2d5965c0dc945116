package sanitize

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestText_NonStringIsEmpty(t *testing.T) {
	for _, in := range []any{nil, 42, 3.14, true, []any{"x"}, map[string]any{"a": "b"}} {
		assert.Equal(t, "", Text(in, 100), "%#v", in)
	}
}

func TestText_StripsMarkupAndScripts(t *testing.T) {
	assert.Equal(t, "hello", Text("<script>alert(1)</script>hello", 500))
	assert.Equal(t, "alert(1)", Text("javascript:alert(1)", 500))
	assert.Equal(t, "alert(1)", Text("JavaScript:alert(1)", 500))
	assert.Equal(t, "hello world", Text("  <b>hello</b> world  ", 500))
	assert.Equal(t, "x", Text("<STYLE>body{}</style>x", 500))

	img := Text("<img onerror=alert(1)>", 500)
	assert.NotContains(t, img, "onerror=")
	assert.NotContains(t, img, "<")
	assert.NotContains(t, img, ">")

	assert.Equal(t, "click  alert(1)", Text("click onClick = alert(1)", 500))
}

func TestText_TruncatesBeforeStripping(t *testing.T) {
	// o corte cai no meio da tag, então "<b" sobra
	assert.Equal(t, "hello <b", Text("hello <b>world</b>", 8))
	assert.Equal(t, "héll", Text("héllo", 4))
	assert.Equal(t, "", Text("anything", 0))
}

func TestText_LengthBound(t *testing.T) {
	inputs := []string{
		"",
		"short",
		strings.Repeat("a", 600),
		strings.Repeat("ü", 300),
		"<p>" + strings.Repeat("x", 100) + "</p>",
		"   padded   ",
	}
	for _, in := range inputs {
		for _, n := range []int{1, 5, 50, 500} {
			got := Text(in, n)
			assert.LessOrEqual(t, utf8.RuneCountInString(got), n, "input %q cap %d", in, n)
		}
	}
}

func TestText_Idempotent(t *testing.T) {
	inputs := []string{
		"plain text",
		"  <b>bold</b> and <i>italic</i>  ",
		"<script>alert('x')</script>after",
		"javascript:void(0)",
		"<a href=\"x\" onclick=\"go()\">link</a>",
		"name onload=run()",
		"Olá, tudo bem?",
		"jajavascript:vascript:x",
		"oonclick=nclick=x",
		"<b></b> hi",
		"hi <i></i>",
	}
	for _, in := range inputs {
		once := Text(in, 500)
		assert.Equal(t, once, Text(once, 500), "input %q", in)
	}
}

func TestText_RemovalCannotRebuildDangerousTokens(t *testing.T) {
	inputs := []string{
		"jajavascript:vascript:alert(1)",
		"JAVAjavascript:SCRIPT:alert(1)",
		"java<b>script:alert(1)",
		"oonclick=nclick=go()",
		"on<i></i>click=go()",
		"<a oonclick=nclick=x>link</a>",
	}
	for _, in := range inputs {
		got := strings.ToLower(Text(in, 500))
		assert.NotContains(t, got, "javascript:", "input %q", in)
		assert.NotContains(t, got, "onclick=", "input %q", in)
	}

	assert.Equal(t, "x", Text("jajavascript:vascript:x", 500))
	assert.Equal(t, "x", Text("oonclick=nclick=x", 500))
	assert.Equal(t, "hi", Text("<b></b> hi", 500))
}

func TestIsValidEmailShape(t *testing.T) {
	valid := []string{
		"a@b.co",
		"first.last+tag@example.com",
		"o'brien@sub.domain-x.org",
		"x_y{z}@a1.io",
	}
	for _, e := range valid {
		assert.True(t, IsValidEmailShape(e), e)
	}

	invalid := []string{
		"not-an-email",
		"",
		"@b.co",
		"a@",
		"a@@b.co",
		"a@b@c.co",
		"a@b",
		"a@b.c",
		"a@b.c0",
		"a b@c.co",
		"a@-b.co",
		"a@b-.co",
		"a@" + strings.Repeat("x", 260) + ".com",
		strings.Repeat("l", 65) + "@b.co",
		"a@" + strings.Repeat("abcdefghi.", 26) + "com",
	}
	for _, e := range invalid {
		assert.False(t, IsValidEmailShape(e), e)
	}
}

func TestIsValidEmailShape_DomainLengthLimit(t *testing.T) {
	label := strings.Repeat("x", 60)
	domain := strings.Join([]string{label, label, label, label}, ".") + ".com"
	assert.True(t, IsValidEmailShape("a@"+domain))

	longer := strings.Join([]string{label, label, label, label, "xxxxxx"}, ".") + ".com"
	assert.Len(t, longer, 254)
	assert.False(t, IsValidEmailShape("a@"+longer))
}

func TestLooksLikeEmail(t *testing.T) {
	assert.True(t, LooksLikeEmail("a@b.c"))
	assert.True(t, LooksLikeEmail("weird!#@host.x-y"))
	assert.False(t, LooksLikeEmail("a@b"))
	assert.False(t, LooksLikeEmail("a b@c.d"))
	assert.False(t, LooksLikeEmail("a@b@c.d"))
	assert.False(t, LooksLikeEmail(""))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "jane@example.com", NormalizeEmail("  Jane@Example.COM "))
}
