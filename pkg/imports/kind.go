package imports

import (
	"path"
	"strings"
)

// Kind is the category of a file, which selects the import syntax to look for.
type Kind int

const (
	KindOther Kind = iota
	KindScript
	KindStylesheet
)

func (k Kind) String() string {
	switch k {
	case KindScript:
		return "script"
	case KindStylesheet:
		return "stylesheet"
	default:
		return "other"
	}
}

// KindOf classifies a path by extension.
func KindOf(p string) Kind {
	switch strings.ToLower(path.Ext(p)) {
	case ".ts", ".tsx", ".mts", ".cts", ".js", ".jsx", ".mjs", ".cjs", ".mdx":
		return KindScript
	case ".css", ".scss", ".sass", ".less":
		return KindStylesheet
	default:
		return KindOther
	}
}
