package fixture

import (
	"context"
	"fmt"
	"os"
	"strings"

	"quill/interpreter-go/pkg/ast"
)

// Load reads and decodes a fixture from a file path or a git+ source.
func Load(ctx context.Context, source string) (*ast.Program, error) {
	data, err := Read(ctx, source)
	if err != nil {
		return nil, err
	}
	prog, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return prog, nil
}

// Read returns the raw fixture document for source.
func Read(ctx context.Context, source string) ([]byte, error) {
	if strings.HasPrefix(source, GitPrefix) {
		src, err := ParseGitSource(source)
		if err != nil {
			return nil, err
		}
		return ReadGit(ctx, src)
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("fixture: read %s: %w", source, err)
	}
	return data, nil
}
