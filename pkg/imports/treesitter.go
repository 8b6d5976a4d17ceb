package imports

import (
	"context"
	"strings"
	"sync"

	"github.com/panbanda/orphans/pkg/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// TreeSitterScanner collects specifiers from syntax trees. Files without a
// grammar (MDX, SCSS) and files that fail to parse use the regex scanner.
type TreeSitterScanner struct {
	mu       sync.Mutex
	idle     []*parser.Parser
	closed   bool
	fallback *RegexScanner
}

// NewTreeSitterScanner creates a tree-sitter scanner.
func NewTreeSitterScanner() *TreeSitterScanner {
	return &TreeSitterScanner{fallback: NewRegexScanner()}
}

func (s *TreeSitterScanner) acquire() *parser.Parser {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.idle); n > 0 {
		p := s.idle[n-1]
		s.idle = s.idle[:n-1]
		return p
	}
	return parser.New()
}

func (s *TreeSitterScanner) release(p *parser.Parser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		p.Close()
		return
	}
	s.idle = append(s.idle, p)
}

// Close releases every idle parser.
func (s *TreeSitterScanner) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.idle {
		p.Close()
	}
	s.idle = nil
	s.closed = true
}

// Scan implements Scanner.
func (s *TreeSitterScanner) Scan(path string, content []byte, kind Kind) []string {
	lang := parser.DetectLanguage(path)
	if kind == KindOther || lang == parser.LangUnknown {
		return s.fallback.Scan(path, content, kind)
	}

	p := s.acquire()
	defer s.release(p)

	result, err := p.Parse(context.Background(), content, lang, path)
	if err != nil {
		return s.fallback.Scan(path, content, kind)
	}
	defer result.Close()

	root := result.Tree.RootNode()
	var specs []string
	if lang == parser.LangCSS {
		specs = cssSpecifiers(root, content)
	} else {
		specs = scriptSpecifiers(root, content)
	}

	// Error recovery can drop statements; the text scan fills the gaps.
	if root.HasError() {
		specs = append(specs, s.fallback.Scan(path, content, kind)...)
	}
	return normalize(specs)
}

func scriptSpecifiers(root *sitter.Node, src []byte) []string {
	var specs []string
	parser.WalkTyped(root, src, func(node *sitter.Node, nodeType string, src []byte) bool {
		switch nodeType {
		case "import_statement", "export_statement", "import_require_clause":
			if source := node.ChildByFieldName("source"); source != nil {
				specs = append(specs, stringLiteral(source, src))
			}
		case "call_expression":
			if spec, ok := callSpecifier(node, src); ok {
				specs = append(specs, spec)
			}
		}
		return true
	})
	return specs
}

// firstArgument returns the first named argument that is not a comment, so
// import(/* webpackChunkName: "x" */ './x') yields the string.
func firstArgument(args *sitter.Node) *sitter.Node {
	if args == nil {
		return nil
	}
	for i := range int(args.NamedChildCount()) {
		if arg := args.NamedChild(i); arg.Type() != "comment" {
			return arg
		}
	}
	return nil
}

// callSpecifier matches import('x') and require('x') with a literal argument.
func callSpecifier(node *sitter.Node, src []byte) (string, bool) {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return "", false
	}
	switch fn.Type() {
	case "import":
	case "identifier":
		if parser.GetNodeText(fn, src) != "require" {
			return "", false
		}
	default:
		return "", false
	}

	arg := firstArgument(node.ChildByFieldName("arguments"))
	if arg == nil {
		return "", false
	}
	switch arg.Type() {
	case "string":
		return stringLiteral(arg, src), true
	case "template_string":
		for i := range int(arg.NamedChildCount()) {
			if arg.NamedChild(i).Type() == "template_substitution" {
				return "", false
			}
		}
		return stringLiteral(arg, src), true
	}
	return "", false
}

func cssSpecifiers(root *sitter.Node, src []byte) []string {
	var specs []string
	parser.WalkTyped(root, src, func(node *sitter.Node, nodeType string, src []byte) bool {
		if nodeType != "import_statement" {
			return true
		}
		found := false
		parser.WalkTyped(node, src, func(n *sitter.Node, t string, src []byte) bool {
			if found {
				return false
			}
			switch t {
			case "string_value", "plain_value":
				specs = append(specs, stringLiteral(n, src))
				found = true
				return false
			case "import_statement", "call_expression", "arguments":
				return true
			}
			return false
		})
		return false
	})
	return specs
}

// stringLiteral returns the text of a string node without its quotes.
func stringLiteral(node *sitter.Node, src []byte) string {
	text := parser.GetNodeText(node, src)
	if len(text) >= 2 {
		switch text[0] {
		case '\'', '"', '`':
			if text[len(text)-1] == text[0] {
				return text[1 : len(text)-1]
			}
		}
	}
	return strings.TrimSpace(text)
}
