package lsp

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"jmmc/internal/ast"
)

// SemanticToken represents a single LSP semantic token entry
// Line and StartChar are 0-based positions
// TokenType is an index into the semanticTokenTypes array
// TokenModifiers is a bitmask based on semanticTokenModifiers
type SemanticToken struct {
	Line           uint32
	StartChar      uint32
	Length         uint32
	TokenType      int // index into semanticTokenTypes
	TokenModifiers int // bitmask
}

// tokenWalker collects tokens for one document. Declarations carry the position
// of their first keyword, so names are located in the source lines.
type tokenWalker struct {
	lines  []string
	tokens []SemanticToken
}

func collectSemanticTokens(program *ast.Program, source string) []SemanticToken {
	if program == nil || program.Class == nil {
		return nil
	}
	w := &tokenWalker{lines: strings.Split(source, "\n")}

	for _, imp := range program.Imports {
		col := imp.Pos.Column
		for _, segment := range imp.Path {
			col = w.name(imp.Pos.Line, col, segment, "namespace", 0)
		}
	}

	class := program.Class
	col := w.name(class.Pos.Line, class.Pos.Column, class.Name, "type", declaration)
	if class.Super != "" {
		w.name(class.Pos.Line, col, class.Super, "type", 0)
	}
	for _, field := range class.Fields {
		w.name(field.Pos.Line, field.Pos.Column, field.Name, "property", declaration)
	}
	for _, method := range class.Methods {
		w.method(method)
	}

	slices.SortFunc(w.tokens, func(a, b SemanticToken) int {
		if c := cmp.Compare(a.Line, b.Line); c != 0 {
			return c
		}
		return cmp.Compare(a.StartChar, b.StartChar)
	})
	return w.tokens
}

const declaration = 1 << 0

func (w *tokenWalker) method(m *ast.MethodDecl) {
	modifiers := declaration
	if m.Static {
		modifiers |= 1 << 1
	}
	col := m.Pos.Column
	if m.Public {
		col += len("public")
	}
	if m.Static {
		col = w.skipWord(m.Pos.Line, col, "static")
	}
	// the return type precedes the name
	if m.Return != nil {
		col = w.skipWord(m.Pos.Line, col, m.Return.String())
	}
	w.name(m.Pos.Line, col, m.Name, "method", modifiers)

	for _, p := range m.Params {
		w.name(p.Pos.Line, p.Pos.Column, p.Name, "parameter", declaration)
	}
	for _, local := range m.Locals {
		w.name(local.Pos.Line, local.Pos.Column, local.Name, "variable", declaration)
	}
	for _, stmt := range m.Body {
		w.stmt(stmt)
	}
}

func (w *tokenWalker) stmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.BlockStmt:
		for _, inner := range n.Stmts {
			w.stmt(inner)
		}
	case *ast.IfStmt:
		w.expr(n.Cond)
		w.stmt(n.Then)
		if n.Else != nil {
			w.stmt(n.Else)
		}
	case *ast.WhileStmt:
		w.expr(n.Cond)
		w.stmt(n.Body)
	case *ast.ExprStmt:
		w.expr(n.Expr)
	case *ast.AssignStmt:
		w.expr(n.Target)
		w.expr(n.Value)
	case *ast.ArrayAssignStmt:
		w.expr(n.Target)
		w.expr(n.Index)
		w.expr(n.Value)
	case *ast.ReturnStmt:
		if n.Value != nil {
			w.expr(n.Value)
		}
	}
}

func (w *tokenWalker) expr(e ast.Expr) {
	switch n := e.(type) {
	case *ast.IntLit:
		w.add(n.Pos.Line, n.Pos.Column, len(strconv.Itoa(int(n.Value))), "number", 0)
	case *ast.VarRef:
		if tokenType, ok := originTokens[n.Origin]; ok {
			w.add(n.Pos.Line, n.Pos.Column, len(n.Name), tokenType, 0)
		}
	case *ast.ParenExpr:
		w.expr(n.Inner)
	case *ast.UnaryExpr:
		w.expr(n.Operand)
	case *ast.BinaryExpr:
		w.expr(n.Left)
		w.expr(n.Right)
	case *ast.IndexExpr:
		w.expr(n.Array)
		w.expr(n.Index)
	case *ast.LengthExpr:
		w.expr(n.Array)
	case *ast.CallExpr:
		w.expr(n.Receiver)
		w.name(n.Pos.Line, n.Pos.Column, n.Method, "method", 0)
		for _, arg := range n.Args {
			w.expr(arg)
		}
	case *ast.NewObjectExpr:
		w.name(n.Pos.Line, n.Pos.Column, n.Class, "type", 0)
		for _, arg := range n.Args {
			w.expr(arg)
		}
	case *ast.NewArrayExpr:
		w.expr(n.Length)
	case *ast.ArrayLiteral:
		for _, el := range n.Elements {
			w.expr(el)
		}
	}
}

var originTokens = map[ast.Origin]string{
	ast.OriginLocal:  "variable",
	ast.OriginParam:  "parameter",
	ast.OriginField:  "property",
	ast.OriginImport: "namespace",
	ast.OriginClass:  "type",
}

// name emits a token for the first whole-word occurrence of word at or after the
// 1-based column and returns the column just past it. Nothing is emitted when the
// word is not on the line.
func (w *tokenWalker) name(line, column int, word, tokenType string, modifiers int) int {
	start := w.find(line, column, word)
	if start < 0 {
		return column
	}
	w.add(line, start, len(word), tokenType, modifiers)
	return start + len(word)
}

func (w *tokenWalker) skipWord(line, column int, word string) int {
	if start := w.find(line, column, word); start >= 0 {
		return start + len(word)
	}
	return column
}

func (w *tokenWalker) find(line, column int, word string) int {
	if line < 1 || line > len(w.lines) || word == "" {
		return -1
	}
	text := w.lines[line-1]
	for from := max(column-1, 0); from < len(text); {
		i := strings.Index(text[from:], word)
		if i < 0 {
			return -1
		}
		start := from + i
		end := start + len(word)
		if (start == 0 || !isWordByte(text[start-1])) && (end == len(text) || !isWordByte(text[end])) {
			return start + 1
		}
		from = start + 1
	}
	return -1
}

func isWordByte(b byte) bool {
	return b == '_' || b == '$' || b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

func (w *tokenWalker) add(line, column, length int, tokenType string, modifiers int) {
	if line < 1 || length <= 0 {
		return
	}
	w.tokens = append(w.tokens, SemanticToken{
		Line:           uint32(line - 1),   // LSP uses 0-based line numbers
		StartChar:      uint32(column - 1), // LSP uses 0-based column numbers
		Length:         uint32(length),
		TokenType:      slices.Index(SemanticTokenTypes, tokenType),
		TokenModifiers: modifiers,
	})
}
