package frontmatter

import (
	"bytes"
	"fmt"

	adrg "github.com/adrg/frontmatter"
)

// Decode parses a document's frontmatter block into v with fence format
// auto-detection (YAML `---` or TOML `+++`) and returns the remaining body.
//
// Documents without a frontmatter block decode into the zero value of v and
// return the full input as body.
func Decode(content []byte, v any) ([]byte, error) {
	body, err := adrg.Parse(bytes.NewReader(content), v)
	if err != nil {
		return nil, fmt.Errorf("decode frontmatter: %w", err)
	}
	return body, nil
}
