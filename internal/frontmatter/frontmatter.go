package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// Format identifies the frontmatter fence dialect of a document.
type Format string

const (
	FormatNone Format = ""     // no frontmatter block
	FormatYAML Format = "yaml" // `---` fences
	FormatTOML Format = "toml" // `+++` fences (Jekyll/Hugo style)
)

func (f Format) fence() string {
	if f == FormatTOML {
		return "+++"
	}
	return "---"
}

// Style captures formatting details needed for stable rewriting.
//
// It records the fence dialect and newline shape; it does not attempt to
// preserve original key formatting inside the block.
type Style struct {
	Format             Format
	Newline            string
	HasTrailingNewline bool
}

// ErrMissingClosingDelimiter indicates the document started with a frontmatter
// delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("frontmatter start delimiter found but closing delimiter is missing")

// Split separates a frontmatter block (`---` YAML or `+++` TOML fences) from
// the Markdown body.
//
// If the document does not start with a recognized fence, had is false and
// body is the full input.
func Split(content []byte) (meta []byte, body []byte, had bool, style Style, err error) {
	style = detectStyle(content)
	if style.Format == FormatNone {
		return nil, content, false, style, nil
	}

	nl := style.Newline
	fence := style.Format.fence()
	open := []byte(fence + nl)

	metaStart := len(open)
	if bytes.HasPrefix(content[metaStart:], open) {
		// Empty block: opening fence immediately followed by closing fence.
		bodyStart := metaStart + len(open)
		return []byte{}, content[bodyStart:], true, style, nil
	}

	closeSeq := []byte(nl + fence + nl)
	idx := bytes.Index(content[metaStart:], closeSeq)
	if idx < 0 {
		return nil, nil, false, style, ErrMissingClosingDelimiter
	}

	metaEnd := metaStart + idx + len(nl)
	bodyStart := metaStart + idx + len(closeSeq)
	return content[metaStart:metaEnd], content[bodyStart:], true, style, nil
}

// Join reassembles a document from a raw frontmatter block and body.
//
// If had is false, Join returns body as-is. Otherwise the block is wrapped in
// the fences and newline style captured in Style.
func Join(meta []byte, body []byte, had bool, style Style) []byte {
	if !had {
		return body
	}

	nl := style.Newline
	if nl == "" {
		nl = "\n"
	}
	fence := []byte(style.Format.fence() + nl)

	out := make([]byte, 0, 2*len(fence)+len(meta)+len(body))
	out = append(out, fence...)
	out = append(out, meta...)
	out = append(out, fence...)
	out = append(out, body...)
	return out
}

// ParseYAML parses a raw YAML frontmatter block (without fences) into a map.
func ParseYAML(meta []byte) (map[string]any, error) {
	if len(meta) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(meta, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

func detectStyle(content []byte) Style {
	newline := "\n"
	for i := 0; i+1 < len(content); i++ {
		if content[i] == '\r' && content[i+1] == '\n' {
			newline = "\r\n"
			break
		}
		if content[i] == '\n' {
			newline = "\n"
			break
		}
	}

	format := FormatNone
	if bytes.HasPrefix(content, []byte("---"+newline)) {
		format = FormatYAML
	} else if bytes.HasPrefix(content, []byte("+++"+newline)) {
		format = FormatTOML
	}

	hasTrailingNewline := len(content) > 0 && (content[len(content)-1] == '\n')

	return Style{
		Format:             format,
		Newline:            newline,
		HasTrailingNewline: hasTrailingNewline,
	}
}
