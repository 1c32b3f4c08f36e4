package regalloc

import (
	"slices"

	"jmmc/internal/errors"
	"jmmc/internal/ir"
)

// Set is a set of variable names
type Set map[string]struct{}

func newSet(names ...string) Set {
	s := make(Set, len(names))
	for _, name := range names {
		s[name] = struct{}{}
	}
	return s
}

func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the members in ascending order
func (s Set) Sorted() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (s Set) equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for name := range s {
		if !other.Has(name) {
			return false
		}
	}
	return true
}

// Liveness holds the per-instruction live sets of one method together with
// the control-flow edges they were computed over
type Liveness struct {
	In   []Set
	Out  []Set
	Succ [][]int
	Pred [][]int
	Uses []Set
	Defs []Set
}

// Successors builds the control-flow graph of m: a Goto reaches only its
// target, a Return reaches nothing, a CondBranch reaches both the next
// instruction and its target, anything else falls through
func Successors(m *ir.Method) ([][]int, error) {
	targets := m.Labels.Targets()
	n := len(m.Instructions)
	succ := make([][]int, n)

	target := func(label string) (int, error) {
		index, ok := targets[label]
		if !ok {
			return 0, errors.Precondition("method %s jumps to undefined label %s", m.Name, label)
		}
		if index >= n {
			return 0, errors.Precondition("method %s: label %s has no instruction", m.Name, label)
		}
		return index, nil
	}

	for i, inst := range m.Instructions {
		switch inst := inst.(type) {
		case *ir.Goto:
			t, err := target(inst.Label)
			if err != nil {
				return nil, err
			}
			succ[i] = []int{t}
		case *ir.Return:
		case *ir.CondBranch:
			t, err := target(inst.Label)
			if err != nil {
				return nil, err
			}
			if i+1 < n && i+1 != t {
				succ[i] = append(succ[i], i+1)
			}
			succ[i] = append(succ[i], t)
		default:
			if i+1 < n {
				succ[i] = []int{i + 1}
			}
		}
	}
	return succ, nil
}

// Analyze computes live-in and live-out sets with a backward work-list that
// starts from every instruction and re-enqueues predecessors on change
func Analyze(m *ir.Method) (*Liveness, error) {
	succ, err := Successors(m)
	if err != nil {
		return nil, err
	}

	n := len(m.Instructions)
	lv := &Liveness{
		In:   make([]Set, n),
		Out:  make([]Set, n),
		Succ: succ,
		Pred: make([][]int, n),
		Uses: make([]Set, n),
		Defs: make([]Set, n),
	}
	for i, inst := range m.Instructions {
		lv.In[i] = newSet()
		lv.Out[i] = newSet()
		lv.Uses[i] = newSet(ir.Uses(inst)...)
		lv.Defs[i] = newSet(ir.Defs(inst)...)
		for _, s := range succ[i] {
			lv.Pred[s] = append(lv.Pred[s], i)
		}
	}

	queued := make([]bool, n)
	worklist := make([]int, 0, n)
	for i := n - 1; i >= 0; i-- {
		worklist = append(worklist, i)
		queued[i] = true
	}

	rounds := 0
	for len(worklist) > 0 {
		i := worklist[0]
		worklist = worklist[1:]
		queued[i] = false
		rounds++

		out := newSet()
		for _, s := range succ[i] {
			for name := range lv.In[s] {
				out[name] = struct{}{}
			}
		}
		in := newSet()
		for name := range lv.Uses[i] {
			in[name] = struct{}{}
		}
		for name := range out {
			if !lv.Defs[i].Has(name) {
				in[name] = struct{}{}
			}
		}

		lv.Out[i] = out
		if in.equal(lv.In[i]) {
			continue
		}
		lv.In[i] = in
		for _, p := range lv.Pred[i] {
			if !queued[p] {
				queued[p] = true
				worklist = append(worklist, p)
			}
		}
	}

	log.Debugf("liveness of %s converged after %d visits", m.Name, rounds)
	return lv, nil
}
