package ir

import (
	"sort"

	"jmmc/internal/types"
)

// ClassUnit is one compiled class in IR form
type ClassUnit struct {
	Name    string
	Super   string   // empty when the class extends Object
	Imports []string // dotted paths, last segment is the usable short name
	Fields  []*Field
	Methods []*Method
}

type Access int

const (
	AccessDefault Access = iota
	AccessPublic
)

func (a Access) String() string {
	if a == AccessPublic {
		return "public"
	}
	return "default"
}

type Field struct {
	Name   string
	Type   *types.Type
	Access Access
}

type Param struct {
	Name string
	Type *types.Type
}

// Method is the linear IR of one method. Params occupy the lowest registers in
// order; register 0 is the receiver on instance methods.
type Method struct {
	Name         string
	Access       Access
	Static       bool
	Params       []*Param
	Return       *types.Type
	Instructions []Instruction
	Labels       LabelTable
	Vars         *VarTable
}

// FixedSlots is the number of registers taken by the receiver and the parameters
func (m *Method) FixedSlots() int {
	if m.Static {
		return len(m.Params)
	}
	return len(m.Params) + 1
}

// Descriptor binds a variable to its register
type Descriptor struct {
	Name     string
	Register int
	Type     *types.Type
}

// VarTable maps variable names to descriptors, remembering insertion order
type VarTable struct {
	order   []string
	entries map[string]*Descriptor
}

func NewVarTable() *VarTable {
	return &VarTable{entries: make(map[string]*Descriptor)}
}

// Add registers name with the next sequential register; re-adding is a no-op
func (vt *VarTable) Add(name string, typ *types.Type) *Descriptor {
	if d, ok := vt.entries[name]; ok {
		return d
	}
	d := &Descriptor{Name: name, Register: len(vt.order), Type: typ}
	vt.entries[name] = d
	vt.order = append(vt.order, name)
	return d
}

// SetRegister rebinds an existing variable, reporting whether it was present
func (vt *VarTable) SetRegister(name string, register int) bool {
	d, ok := vt.entries[name]
	if ok {
		d.Register = register
	}
	return ok
}

func (vt *VarTable) Get(name string) (*Descriptor, bool) {
	d, ok := vt.entries[name]
	return d, ok
}

// Names returns variable names in insertion order
func (vt *VarTable) Names() []string {
	return append([]string(nil), vt.order...)
}

func (vt *VarTable) Len() int {
	return len(vt.order)
}

// MaxRegister returns the highest register bound, or -1 for an empty table
func (vt *VarTable) MaxRegister() int {
	highest := -1
	for _, d := range vt.entries {
		highest = max(highest, d.Register)
	}
	return highest
}

// LabelTable maps an instruction index to the labels placed before it
type LabelTable map[int][]string

func (lt LabelTable) Add(index int, label string) {
	lt[index] = append(lt[index], label)
}

func (lt LabelTable) At(index int) []string {
	return lt[index]
}

// Targets inverts the table into label name → instruction index
func (lt LabelTable) Targets() map[string]int {
	targets := make(map[string]int)
	for index, labels := range lt {
		for _, label := range labels {
			targets[label] = index
		}
	}
	return targets
}

// Indices returns the labelled instruction indices in ascending order
func (lt LabelTable) Indices() []int {
	indices := make([]int, 0, len(lt))
	for index := range lt {
		indices = append(indices, index)
	}
	sort.Ints(indices)
	return indices
}
