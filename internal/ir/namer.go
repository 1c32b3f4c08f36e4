package ir

import "fmt"

// Namer issues temporary and label names from one monotonic counter. A Namer
// lives as long as one compilation unit; it is never reset mid-unit.
type Namer struct {
	next int
}

func NewNamer() *Namer {
	return &Namer{}
}

// Temp returns a fresh tmp<n> name
func (n *Namer) Temp() string {
	name := fmt.Sprintf("tmp%d", n.next)
	n.next++
	return name
}

// Labels returns one label per prefix, all sharing a single fresh suffix,
// e.g. Labels("if_then", "if_end") → if_then_4, if_end_4
func (n *Namer) Labels(prefixes ...string) []string {
	labels := make([]string, len(prefixes))
	for i, prefix := range prefixes {
		labels[i] = fmt.Sprintf("%s_%d", prefix, n.next)
	}
	n.next++
	return labels
}
