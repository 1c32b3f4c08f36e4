package ir

// This file provides the entry points of the IR layer: lowering an annotated
// program into a ClassUnit and rendering it for -d dumps and tests.

import (
	"jmmc/internal/ast"
	"jmmc/internal/semantic"
)

// BuildUnit lowers an analyzed program into IR
func BuildUnit(program *ast.Program, table *semantic.Table) (*ClassUnit, error) {
	builder := NewBuilder(table)
	return builder.Build(program)
}

// PrintUnit returns the listing of unit
func PrintUnit(unit *ClassUnit) string {
	return Print(unit)
}
