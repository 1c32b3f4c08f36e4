package regalloc

import (
	"fmt"

	"github.com/tliron/commonlog"
	"jmmc/internal/errors"
	"jmmc/internal/ir"
)

var log = commonlog.GetLogger("jmmc.regalloc")

// Disabled is the budget that keeps the sequential variable table
const Disabled = -1

// Result describes the colouring chosen for one method
type Result struct {
	Colors    map[string]int
	Registers int      // total locals: receiver, params and coloured variables
	Spilled   []string // nodes marked as potential spills during simplify
}

// Allocate colours the variable table of m in place. A negative budget leaves
// the table untouched; zero colours without a cap; a positive budget caps the
// total number of locals including the receiver and parameters.
func Allocate(m *ir.Method, budget int) (*Result, error) {
	if budget < 0 {
		log.Debugf("register allocation disabled for %s", m.Name)
		return nil, nil
	}
	if m.Vars == nil {
		return nil, errors.Precondition("method %s has no variable table", m.Name)
	}

	lv, err := Analyze(m)
	if err != nil {
		return nil, err
	}
	graph := BuildGraph(m.Vars.Names(), lv)

	fixed := m.FixedSlots()
	precoloured := make(map[string]int, fixed)
	for _, name := range m.Vars.Names() {
		if d, _ := m.Vars.Get(name); d.Register < fixed {
			precoloured[name] = d.Register
		}
	}
	if len(precoloured) != fixed {
		return nil, errors.Precondition("method %s: receiver and parameters do not fill registers 0..%d", m.Name, fixed-1)
	}

	var candidates []string
	for _, name := range graph.Nodes() {
		if _, ok := precoloured[name]; !ok {
			candidates = append(candidates, name)
		}
	}

	k := len(candidates)
	if budget > 0 {
		k = max(budget-fixed, 0)
	}

	stack, spilled := simplify(graph, candidates, k)
	colors := selectColors(graph, stack, precoloured, fixed)

	result := &Result{Colors: colors, Registers: fixed, Spilled: spilled}
	for _, c := range colors {
		result.Registers = max(result.Registers, c+1)
	}

	if len(spilled) > 0 {
		log.Infof("%s: %d potential spills with %d colours: %v", m.Name, len(spilled), k, spilled)
	}
	if budget > 0 && result.Registers > budget {
		return nil, errors.InsufficientRegisters(m.Name, result.Registers, budget)
	}

	for name, c := range colors {
		m.Vars.SetRegister(name, c)
	}
	log.Debugf("%s: %d variables in %d registers", m.Name, len(colors), result.Registers)
	return result, nil
}

// simplify removes nodes of degree < k onto a stack, marking the lowest-sorted
// remaining node as a spill when none qualifies. Only edges between candidates
// count; precoloured nodes live in a disjoint register range.
func simplify(g *Graph, candidates []string, k int) ([]string, []string) {
	remaining := newSet(candidates...)
	degree := func(name string) int {
		d := 0
		for _, n := range g.Neighbors(name) {
			if remaining.Has(n) {
				d++
			}
		}
		return d
	}

	var stack, spilled []string
	for len(remaining) > 0 {
		picked := ""
		order := remaining.Sorted()
		for _, name := range order {
			if degree(name) < k {
				picked = name
				break
			}
		}
		if picked == "" {
			picked = order[0]
			spilled = append(spilled, picked)
		}
		stack = append(stack, picked)
		delete(remaining, picked)
	}
	return stack, spilled
}

// selectColors pops the stack and gives each node the lowest register at or
// above base not used by an already coloured neighbour
func selectColors(g *Graph, stack []string, precoloured map[string]int, base int) map[string]int {
	colors := make(map[string]int, len(stack))
	for i := len(stack) - 1; i >= 0; i-- {
		name := stack[i]
		used := make(map[int]bool)
		for _, n := range g.Neighbors(name) {
			if c, ok := colors[n]; ok {
				used[c] = true
			}
			if c, ok := precoloured[n]; ok {
				used[c] = true
			}
		}
		c := base
		for used[c] {
			c++
		}
		colors[name] = c
	}
	return colors
}

// AllocateUnit runs Allocate over every method of unit, stopping at the first error
func AllocateUnit(unit *ir.ClassUnit, budget int) error {
	for _, m := range unit.Methods {
		if _, err := Allocate(m, budget); err != nil {
			return err
		}
	}
	return nil
}

// Describe renders a result for -d dumps
func (r *Result) Describe() string {
	if r == nil {
		return "allocation disabled"
	}
	return fmt.Sprintf("%d registers, spills %v", r.Registers, r.Spilled)
}
