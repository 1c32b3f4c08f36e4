// Package compiler drives a Java-- source file through every stage down to
// Jasmin assembly text.
package compiler

import (
	"github.com/tliron/commonlog"
	"jmmc/internal/ast"
	"jmmc/internal/errors"
	"jmmc/internal/ir"
	"jmmc/internal/jasmin"
	"jmmc/internal/optimize"
	"jmmc/internal/parser"
	"jmmc/internal/regalloc"
	"jmmc/internal/semantic"
)

var log = commonlog.GetLogger("jmmc.compiler")

// Config selects the optional stages. RegisterAllocation follows
// regalloc.Allocate: negative disables allocation, zero minimises registers
// and a positive value caps the locals of every method.
type Config struct {
	Optimize           bool
	RegisterAllocation int
	Verify             bool
}

// DefaultConfig compiles without AST optimisation or register allocation
func DefaultConfig() Config {
	return Config{RegisterAllocation: regalloc.Disabled}
}

// Result holds the artefacts of a successful compilation
type Result struct {
	Program *ast.Program
	Table   *semantic.Table
	Unit    *ir.ClassUnit
	Class   *jasmin.Class
}

// Jasmin renders the final listing
func (r *Result) Jasmin() string {
	return r.Class.String()
}

// Compile parses and compiles source, returning the Jasmin text
func Compile(name, source string, cfg Config) (string, error) {
	result, err := CompileSource(name, source, cfg)
	if err != nil {
		return "", err
	}
	return result.Jasmin(), nil
}

// CompileSource runs every stage and keeps the intermediate artefacts.
// The first error of any stage aborts compilation; it is always an
// errors.CompilerError.
func CompileSource(name, source string, cfg Config) (*Result, error) {
	program, err := parser.ParseSource(name, source)
	if err != nil {
		return nil, err
	}
	return CompileProgram(program, cfg)
}

// CompileProgram compiles an already parsed program
func CompileProgram(program *ast.Program, cfg Config) (*Result, error) {
	table, errs := semantic.NewAnalyzer().Analyze(program)
	if len(errs) > 0 {
		for _, e := range errs[1:] {
			log.Debugf("further semantic error: %s", e.Error())
		}
		return nil, errs[0]
	}
	return compileAnnotated(program, table, cfg)
}

// compileAnnotated runs the stages after semantic analysis
func compileAnnotated(program *ast.Program, table *semantic.Table, cfg Config) (*Result, error) {
	if cfg.Optimize {
		program = optimize.Optimize(program)
		log.Debugf("optimised AST:\n%s", program.String())
	}

	unit, err := ir.BuildUnit(program, table)
	if err != nil {
		return nil, err
	}

	if err := regalloc.AllocateUnit(unit, cfg.RegisterAllocation); err != nil {
		return nil, err
	}
	log.Debugf("IR:\n%s", ir.PrintUnit(unit))

	class, err := jasmin.Emit(unit)
	if err != nil {
		return nil, err
	}
	jasmin.Peephole(class)

	if cfg.Verify {
		if err := jasmin.CheckStack(class); err != nil {
			return nil, err
		}
	}

	log.Infof("compiled class %s (%d methods)", unit.Name, len(class.Methods))
	return &Result{Program: program, Table: table, Unit: unit, Class: class}, nil
}

// Check compiles source with cfg and returns every problem found together with
// the artefacts of the stages that succeeded; later fields of the result stay nil.
// Semantic analysis reports all of its errors, any other stage at most one.
func Check(name, source string, cfg Config) (*Result, []errors.CompilerError) {
	result := &Result{}
	program, err := parser.ParseSource(name, source)
	if err != nil {
		return result, asCompilerErrors(err)
	}
	result.Program = program

	table, errs := semantic.NewAnalyzer().Analyze(program)
	if len(errs) > 0 {
		return result, errs
	}
	result.Table = table

	compiled, err := compileAnnotated(program, table, cfg)
	if err != nil {
		return result, asCompilerErrors(err)
	}
	compiled.Program = program
	return compiled, nil
}

func asCompilerErrors(err error) []errors.CompilerError {
	if ce, ok := errors.As(err); ok {
		return []errors.CompilerError{ce}
	}
	return []errors.CompilerError{errors.NewError(errors.ErrorPrecondition, err.Error(), ast.Position{}).Build()}
}
