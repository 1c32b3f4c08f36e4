package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"
	"jmmc/internal/errors"
)

// ConvertErrors transforms compiler errors into LSP diagnostics. Errors without a
// source position, such as register allocation failures, are anchored at the
// start of the document.
func ConvertErrors(errs []errors.CompilerError) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}

	for _, err := range errs {
		var start protocol.Position
		if err.Position.Line > 0 {
			start = protocol.Position{
				Line:      uint32(err.Position.Line - 1),
				Character: uint32(max(err.Position.Column-1, 0)),
			}
		}
		end := start
		if err.Position.Line > 0 {
			end.Character += uint32(max(err.Length, 1))
		}

		message := err.Message
		for _, suggestion := range err.Suggestions {
			message += "\nhelp: " + suggestion
		}
		if err.HelpText != "" {
			message += "\nhelp: " + err.HelpText
		}

		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    protocol.Range{Start: start, End: end},
			Severity: ptrSeverity(severity(err.Level)),
			Code:     &protocol.IntegerOrString{Value: err.Code},
			Source:   ptrString("jmmc"),
			Message:  message,
		})
	}

	return diagnostics
}

func severity(level errors.ErrorLevel) protocol.DiagnosticSeverity {
	switch level {
	case errors.Warning:
		return protocol.DiagnosticSeverityWarning
	case errors.Note:
		return protocol.DiagnosticSeverityInformation
	default:
		return protocol.DiagnosticSeverityError
	}
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func ptrString(s string) *string {
	return &s
}
