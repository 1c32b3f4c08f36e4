package parser

import (
	"fmt"
	"os"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"jmmc/grammar"
	"jmmc/internal/ast"
	"jmmc/internal/errors"
)

func ParseFile(path string) (*ast.Program, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return ParseSource(path, string(source))
}

// ParseSource parses Java-- source text into an unannotated AST. Every failure is
// returned as an errors.CompilerError carrying the source position.
func ParseSource(sourceName string, source string) (*ast.Program, error) {
	file, err := grammar.ParseString(sourceName, source)
	if err != nil {
		if pe, ok := err.(participle.Error); ok {
			return nil, errors.ParseError(pe.Message(), position(pe.Position()))
		}
		return nil, errors.ParseError(err.Error(), ast.Position{Filename: sourceName})
	}

	c := &converter{}
	program := c.file(file)
	if len(c.errs) > 0 {
		return nil, c.errs[0]
	}
	return program, nil
}

func position(pos lexer.Position) ast.Position {
	return ast.Position{
		Filename: pos.Filename,
		Offset:   pos.Offset,
		Line:     pos.Line,
		Column:   pos.Column,
	}
}
