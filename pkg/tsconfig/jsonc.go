package tsconfig

import (
	"github.com/knadh/koanf/parsers/json"
	"github.com/tailscale/hujson"
)

// JSONC parses JSON with comments and trailing commas, the dialect used by
// tsconfig.json and jsconfig.json. It implements koanf.Parser.
type JSONC struct{}

// Parser returns a JSONC parser.
func Parser() *JSONC {
	return &JSONC{}
}

// Unmarshal strips comments and trailing commas, then decodes as JSON.
func (p *JSONC) Unmarshal(b []byte) (map[string]interface{}, error) {
	std, err := hujson.Standardize(append([]byte(nil), b...))
	if err != nil {
		return nil, err
	}
	return json.Parser().Unmarshal(std)
}

// Marshal encodes as plain JSON.
func (p *JSONC) Marshal(o map[string]interface{}) ([]byte, error) {
	return json.Parser().Marshal(o)
}
