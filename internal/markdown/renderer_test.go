package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRender_BasicMarkdown(t *testing.T) {
	r := NewRenderer(Options{})

	out, err := r.Render([]byte("# Heading\n\nSome *emphasis*.\n"), "")
	require.NoError(t, err)
	require.Contains(t, string(out), `<h1 id="heading">Heading</h1>`)
	require.Contains(t, string(out), "<em>emphasis</em>")
}

func TestRender_Idempotent(t *testing.T) {
	r := NewRenderer(Options{})
	body := []byte("# Title\n\n```go\nfmt.Println(\"hi\")\n```\n\n![pic](img/a.png)\n")

	first, err := r.Render(body, "2025/post")
	require.NoError(t, err)
	second, err := r.Render(body, "2025/post")
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestRender_CodeBlockPreservedVerbatim(t *testing.T) {
	r := NewRenderer(Options{})

	out, err := r.Render([]byte("```html\n<script>alert(1)</script>\n```\n"), "")
	require.NoError(t, err)
	// Escaped literal text, never executable markup.
	require.Contains(t, string(out), "&lt;script&gt;alert(1)&lt;/script&gt;")
	require.NotContains(t, string(out), "<script>alert(1)</script>")
}

func TestRender_RelativeImageResolved(t *testing.T) {
	r := NewRenderer(Options{})

	out, err := r.Render([]byte("![pic](images/cat.png)\n"), "2025/april")
	require.NoError(t, err)
	require.Contains(t, string(out), `src="/assets/2025/april/images/cat.png"`)
}

func TestRender_AbsoluteAndExternalImagesUntouched(t *testing.T) {
	r := NewRenderer(Options{})

	out, err := r.Render([]byte("![a](/static/a.png)\n\n![b](https://cdn.example.com/b.png)\n"), "sub")
	require.NoError(t, err)
	require.Contains(t, string(out), `src="/static/a.png"`)
	require.Contains(t, string(out), `src="https://cdn.example.com/b.png"`)
}

func TestRender_GFMTableSupported(t *testing.T) {
	r := NewRenderer(Options{})

	out, err := r.Render([]byte("| a | b |\n|---|---|\n| 1 | 2 |\n"), "")
	require.NoError(t, err)
	require.Contains(t, string(out), "<table>")
}

func TestRender_SanitizeStripsRawScript(t *testing.T) {
	r := NewRenderer(Options{Sanitize: true})

	out, err := r.Render([]byte("hello\n\n<script>alert(1)</script>\n"), "")
	require.NoError(t, err)
	require.NotContains(t, string(out), "<script>")
}

func TestCacheKey_DistinguishesBodyAndBase(t *testing.T) {
	r := NewRenderer(Options{})

	k1 := r.CacheKey([]byte("body"), "a")
	k2 := r.CacheKey([]byte("body"), "b")
	k3 := r.CacheKey([]byte("other"), "a")
	require.NotEqual(t, k1, k2)
	require.NotEqual(t, k1, k3)
	require.Equal(t, k1, r.CacheKey([]byte("body"), "a"))
}

func TestCacheKey_DependsOnOptions(t *testing.T) {
	plain := NewRenderer(Options{})
	sanitized := NewRenderer(Options{Sanitize: true})
	require.NotEqual(t, plain.CacheKey([]byte("x"), ""), sanitized.CacheKey([]byte("x"), ""))
}

func TestResolveAssetPath(t *testing.T) {
	got, changed := resolveAssetPath("/assets", "sub", "./pic.png")
	require.True(t, changed)
	require.Equal(t, "/assets/sub/pic.png", got)

	_, changed = resolveAssetPath("/assets", "sub", "#anchor")
	require.False(t, changed)
}
