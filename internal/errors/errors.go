package errors

import (
	goerrors "errors"
	"fmt"
	"strings"

	"jmmc/internal/ast"
)

// ErrorLevel represents the severity of an error
type ErrorLevel string

const (
	Error   ErrorLevel = "error"
	Warning ErrorLevel = "warning"
	Note    ErrorLevel = "note"
)

// CompilerError is the one error type every compiler stage returns
type CompilerError struct {
	Level       ErrorLevel
	Code        string       // Error code like E0701
	Message     string       // Primary error message
	Position    ast.Position // Zero when the error has no source location
	Length      int          // Length of the problematic region
	Suggestions []string
	Notes       []string
	HelpText    string
}

func (e CompilerError) Error() string {
	if e.Position.Line > 0 {
		return fmt.Sprintf("%s[%s] %d:%d: %s", e.Level, e.Code, e.Position.Line, e.Position.Column, e.Message)
	}
	return fmt.Sprintf("%s[%s]: %s", e.Level, e.Code, e.Message)
}

// As extracts a CompilerError from an error chain
func As(err error) (CompilerError, bool) {
	var ce CompilerError
	if goerrors.As(err, &ce) {
		return ce, true
	}
	return CompilerError{}, false
}

// ErrorBuilder provides a fluent interface for creating compiler errors
type ErrorBuilder struct {
	err CompilerError
}

func NewError(code, message string, pos ast.Position) *ErrorBuilder {
	return &ErrorBuilder{err: CompilerError{Level: Error, Code: code, Message: message, Position: pos, Length: 1}}
}

func NewWarning(code, message string, pos ast.Position) *ErrorBuilder {
	return &ErrorBuilder{err: CompilerError{Level: Warning, Code: code, Message: message, Position: pos, Length: 1}}
}

func (b *ErrorBuilder) WithLength(length int) *ErrorBuilder {
	b.err.Length = length
	return b
}

func (b *ErrorBuilder) WithSuggestion(message string) *ErrorBuilder {
	b.err.Suggestions = append(b.err.Suggestions, message)
	return b
}

func (b *ErrorBuilder) WithNote(note string) *ErrorBuilder {
	b.err.Notes = append(b.err.Notes, note)
	return b
}

func (b *ErrorBuilder) WithHelp(help string) *ErrorBuilder {
	b.err.HelpText = help
	return b
}

func (b *ErrorBuilder) Build() CompilerError {
	return b.err
}

// ParseError wraps a grammar failure at pos
func ParseError(message string, pos ast.Position) CompilerError {
	return NewError(ErrorParse, message, pos).Build()
}

// UnresolvedSymbol reports a name that is neither a local, a parameter, a field,
// an import nor the class itself
func UnresolvedSymbol(name string, pos ast.Position, candidates []string) CompilerError {
	builder := NewError(ErrorUnresolvedSymbol, fmt.Sprintf("cannot resolve symbol '%s'", name), pos).
		WithLength(len(name))

	similar := findSimilarNames(name, candidates)
	switch len(similar) {
	case 0:
		builder.WithHelp("declare it as a local, a parameter or a field, or import the class")
	case 1:
		builder.WithSuggestion(fmt.Sprintf("did you mean '%s'?", similar[0]))
	default:
		builder.WithSuggestion(fmt.Sprintf("did you mean one of: '%s'?", strings.Join(similar, "', '")))
	}
	return builder.Build()
}

func Unsupported(construct string) CompilerError {
	return NewError(ErrorUnsupported, fmt.Sprintf("unsupported construct: %s", construct), ast.Position{}).Build()
}

// InsufficientRegisters reports a method whose locals do not fit the configured cap
func InsufficientRegisters(method string, required, available int) CompilerError {
	return NewError(ErrorInsufficientRegisters,
		fmt.Sprintf("method %s requires %d registers, only %d available", method, required, available),
		ast.Position{}).
		WithHelp(fmt.Sprintf("use -r=%d or higher, or -r=0 to let the allocator pick the minimum", required)).
		Build()
}

func MalformedType(desc string) CompilerError {
	return NewError(ErrorMalformedType, fmt.Sprintf("malformed type: %s", desc), ast.Position{}).Build()
}

func Precondition(format string, args ...any) CompilerError {
	return NewError(ErrorPrecondition, fmt.Sprintf(format, args...), ast.Position{}).Build()
}

func Verification(method string, problem string) CompilerError {
	return NewError(ErrorVerification, fmt.Sprintf("method %s: %s", method, problem), ast.Position{}).Build()
}

func findSimilarNames(target string, candidates []string) []string {
	var similar []string
	for _, candidate := range candidates {
		if candidate != target && levenshteinDistance(target, candidate) <= 2 {
			similar = append(similar, candidate)
		}
	}
	return similar
}

func levenshteinDistance(a, b string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
