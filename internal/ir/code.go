package ir

// Code is a lowered fragment: instructions plus the labels placed before them.
// Pending labels have been placed but not yet attached; they attach to the
// next instruction emitted or appended.
type Code struct {
	Instructions []Instruction
	Labels       LabelTable
	Pending      []string
}

func NewCode() *Code {
	return &Code{Labels: make(LabelTable)}
}

func (c *Code) Emit(inst Instruction) {
	index := len(c.Instructions)
	for _, label := range c.Pending {
		c.Labels.Add(index, label)
	}
	c.Pending = nil
	c.Instructions = append(c.Instructions, inst)
}

// Mark places label before the next instruction
func (c *Code) Mark(label string) {
	c.Pending = append(c.Pending, label)
}

// Append concatenates other after c
func (c *Code) Append(other *Code) {
	if other == nil {
		return
	}
	for index, inst := range other.Instructions {
		c.Pending = append(c.Pending, other.Labels.At(index)...)
		c.Emit(inst)
	}
	c.Pending = append(c.Pending, other.Pending...)
}

func (c *Code) Len() int {
	return len(c.Instructions)
}

// Last returns the final instruction, nil when empty
func (c *Code) Last() Instruction {
	if len(c.Instructions) == 0 {
		return nil
	}
	return c.Instructions[len(c.Instructions)-1]
}
