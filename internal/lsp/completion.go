package lsp

import (
	"fmt"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"
	"jmmc/internal/ast"
	"jmmc/internal/types"
)

var keywords = []string{
	"boolean", "class", "else", "extends", "false", "if", "import", "int",
	"length", "new", "public", "return", "static", "this", "true", "void", "while",
}

// completionItems lists the keywords followed by the imports, fields and methods
// of program, which may be nil
func completionItems(program *ast.Program) []protocol.CompletionItem {
	items := make([]protocol.CompletionItem, 0, len(keywords))
	for _, kw := range keywords {
		items = append(items, protocol.CompletionItem{
			Label: kw,
			Kind:  ptrKind(protocol.CompletionItemKindKeyword),
		})
	}
	if program == nil || program.Class == nil {
		return items
	}

	for _, imp := range program.Imports {
		items = append(items, protocol.CompletionItem{
			Label:  types.ShortName(strings.Join(imp.Path, ".")),
			Kind:   ptrKind(protocol.CompletionItemKindModule),
			Detail: ptrString(strings.Join(imp.Path, ".")),
		})
	}
	for _, field := range program.Class.Fields {
		items = append(items, protocol.CompletionItem{
			Label:  field.Name,
			Kind:   ptrKind(protocol.CompletionItemKindField),
			Detail: ptrString(field.Type.String()),
		})
	}
	for _, method := range program.Class.Methods {
		items = append(items, protocol.CompletionItem{
			Label:  method.Name,
			Kind:   ptrKind(protocol.CompletionItemKindMethod),
			Detail: ptrString(signature(method)),
		})
	}
	return items
}

// signature renders a method as "int add(int a, int b)"
func signature(m *ast.MethodDecl) string {
	params := make([]string, len(m.Params))
	for i, p := range m.Params {
		params[i] = fmt.Sprintf("%s %s", p.Type, p.Name)
	}
	prefix := ""
	if m.Static {
		prefix = "static "
	}
	return fmt.Sprintf("%s%s %s(%s)", prefix, m.Return, m.Name, strings.Join(params, ", "))
}

func ptrKind(k protocol.CompletionItemKind) *protocol.CompletionItemKind {
	return &k
}
