// Package optimize rewrites an annotated AST into a cheaper equivalent one.
// Passes never mutate their input; each returns a fresh tree.
package optimize

import (
	"github.com/tliron/commonlog"
	"jmmc/internal/ast"
)

var log = commonlog.GetLogger("jmmc.optimize")

// maxRounds bounds the fixed-point loop; every pass shrinks the tree so the
// bound is only reached on pathological input
const maxRounds = 64

// OptimizationPass is a single AST-to-AST transformation
type OptimizationPass interface {
	Name() string
	Description() string
	// Apply returns the rewritten program and whether anything changed
	Apply(program *ast.Program) (*ast.Program, bool)
}

// OptimizationPipeline runs its passes in order until none of them changes the tree
type OptimizationPipeline struct {
	passes []OptimizationPass
}

// NewOptimizationPipeline creates a pipeline with constant folding followed by
// constant propagation
func NewOptimizationPipeline() *OptimizationPipeline {
	pipeline := &OptimizationPipeline{}
	pipeline.AddPass(&ConstantFolding{})
	pipeline.AddPass(&ConstantPropagation{})
	return pipeline
}

func (p *OptimizationPipeline) AddPass(pass OptimizationPass) {
	p.passes = append(p.passes, pass)
}

// Run applies the passes to a fixed point and returns the final tree
func (p *OptimizationPipeline) Run(program *ast.Program) *ast.Program {
	for round := 1; round <= maxRounds; round++ {
		changed := false
		for _, pass := range p.passes {
			next, passChanged := pass.Apply(program)
			if passChanged {
				log.Debugf("round %d: %s changed the tree", round, pass.Name())
				changed = true
			}
			program = next
		}
		if !changed {
			log.Debugf("fixed point after %d rounds", round)
			return program
		}
	}
	log.Warningf("no fixed point after %d rounds", maxRounds)
	return program
}

// Optimize runs the default pipeline
func Optimize(program *ast.Program) *ast.Program {
	return NewOptimizationPipeline().Run(program)
}
