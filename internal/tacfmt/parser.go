package tacfmt

import (
	"fmt"
	"os"

	"github.com/alecthomas/participle/v2"
)

func buildParser() (*participle.Parser[Program], error) {
	return participle.Build[Program](
		participle.Lexer(TacLexer),
		participle.Elide("Whitespace", "Comment"),
		participle.UseLookahead(3),
	)
}

// ParseFile reads and parses path.
func ParseFile(path string) (*Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tacfmt: read %s: %w", path, err)
	}
	return ParseSource(path, string(src))
}

// ParseSource parses source text already in memory, attributing positions
// to sourceName. Returned errors satisfy participle.Error for callers that
// want caret-style reporting (see cmd/ssac-cli's parseErrorMessage).
func ParseSource(sourceName, source string) (*Program, error) {
	parser, err := buildParser()
	if err != nil {
		return nil, fmt.Errorf("tacfmt: build parser: %w", err)
	}
	return parser.ParseString(sourceName, source)
}
