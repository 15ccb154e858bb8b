package frontmatter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplit_NoFrontmatter_ReturnsBodyOnly(t *testing.T) {
	input := []byte("# Title\n\nHello\n")

	meta, body, had, style, err := Split(input)
	require.NoError(t, err)
	require.False(t, had)
	require.Empty(t, meta)
	require.Equal(t, input, body)
	require.Equal(t, FormatNone, style.Format)
}

func TestSplit_YAMLFrontmatter_SplitsMetaAndBody(t *testing.T) {
	input := []byte("---\ntitle: Hello\n---\n# Title\n")

	meta, body, had, style, err := Split(input)
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, FormatYAML, style.Format)
	require.Equal(t, []byte("title: Hello\n"), meta)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestSplit_TOMLFrontmatter_SplitsMetaAndBody(t *testing.T) {
	input := []byte("+++\ntitle = \"Hello\"\n+++\n# Title\n")

	meta, body, had, style, err := Split(input)
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, FormatTOML, style.Format)
	require.Equal(t, []byte("title = \"Hello\"\n"), meta)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestSplit_MissingClosingDelimiter_ReturnsError(t *testing.T) {
	input := []byte("---\ntitle: Hello\n# Title\n")

	_, _, had, _, err := Split(input)
	require.Error(t, err)
	require.False(t, had)
	require.True(t, errors.Is(err, ErrMissingClosingDelimiter))
}

func TestSplit_CRLF_SplitsMetaAndBody(t *testing.T) {
	input := []byte("---\r\ntitle: Hello\r\n---\r\n# Title\r\n")

	meta, body, had, style, err := Split(input)
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, "\r\n", style.Newline)
	require.Equal(t, []byte("title: Hello\r\n"), meta)
	require.Equal(t, []byte("# Title\r\n"), body)
}

func TestSplit_EmptyBlock_SplitsAsHadWithEmptyMeta(t *testing.T) {
	input := []byte("---\n---\n# Title\n")

	meta, body, had, _, err := Split(input)
	require.NoError(t, err)
	require.True(t, had)
	require.Empty(t, meta)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestJoin_RoundTripsSplitOutput(t *testing.T) {
	for _, input := range [][]byte{
		[]byte("---\ntitle: Hello\n---\n# Title\n"),
		[]byte("+++\ntitle = \"Hello\"\n+++\nBody\n"),
		[]byte("no frontmatter here\n"),
	} {
		meta, body, had, style, err := Split(input)
		require.NoError(t, err)
		require.Equal(t, input, Join(meta, body, had, style))
	}
}

func TestParseYAML_EmptyInput_ReturnsEmptyMap(t *testing.T) {
	fields, err := ParseYAML(nil)
	require.NoError(t, err)
	require.Empty(t, fields)
}

func TestDecode_YAML_PopulatesStruct(t *testing.T) {
	var meta struct {
		Title string   `yaml:"title" toml:"title"`
		Tags  []string `yaml:"tags" toml:"tags"`
	}
	body, err := Decode([]byte("---\ntitle: Hello\ntags: [go, blog]\n---\nBody\n"), &meta)
	require.NoError(t, err)
	require.Equal(t, "Hello", meta.Title)
	require.Equal(t, []string{"go", "blog"}, meta.Tags)
	require.Equal(t, "Body\n", string(body))
}

func TestDecode_TOML_PopulatesStruct(t *testing.T) {
	var meta struct {
		Title string `yaml:"title" toml:"title"`
	}
	body, err := Decode([]byte("+++\ntitle = \"Hello\"\n+++\nBody\n"), &meta)
	require.NoError(t, err)
	require.Equal(t, "Hello", meta.Title)
	require.Equal(t, "Body\n", string(body))
}
