package jasmin

import (
	"strconv"
	"strings"
)

// Peephole rewrites every method of class in place: redundant store/load pairs
// are removed to a fixed point, then register accesses 0..3 are compacted.
// Running it twice changes nothing.
func Peephole(class *Class) {
	for _, m := range class.Methods {
		removed := 0
		for {
			n := eliminateStoreLoad(m)
			if n == 0 {
				break
			}
			removed += n
		}
		compacted := compact(m)
		if removed > 0 || compacted > 0 {
			log.Debugf("peephole %s: %d store/load pairs removed, %d accesses compacted", m.Name(), removed, compacted)
		}
	}
}

// OptimizeText runs Peephole over Jasmin source text. Text that does not parse
// as a listing is returned unchanged.
func OptimizeText(text string) string {
	class, err := Parse(text)
	if err != nil {
		log.Warningf("peephole skipped: %s", err)
		return text
	}
	Peephole(class)
	return class.String()
}

// access decodes a local-variable load or store in generic or compact form.
// kind is "i" or "a", action is "load" or "store".
func access(line Line) (kind, action string, register int, ok bool) {
	if line.IsLabel() {
		return "", "", 0, false
	}
	opcode := line.Opcode
	if len(opcode) < 5 || (opcode[0] != 'i' && opcode[0] != 'a') {
		return "", "", 0, false
	}
	kind = opcode[:1]
	rest := opcode[1:]

	if base, suffix, found := strings.Cut(rest, "_"); found {
		if base != "load" && base != "store" || len(line.Args) != 0 {
			return "", "", 0, false
		}
		r, err := strconv.Atoi(suffix)
		if err != nil || r < 0 || r > 3 {
			return "", "", 0, false
		}
		return kind, base, r, true
	}

	if rest != "load" && rest != "store" || len(line.Args) != 1 {
		return "", "", 0, false
	}
	r, err := strconv.Atoi(line.Args[0])
	if err != nil {
		return "", "", 0, false
	}
	return kind, rest, r, true
}

// reads counts the instructions that read register r, iinc included
func reads(m *Method, r int) int {
	count := 0
	for _, line := range m.Body {
		if _, action, reg, ok := access(line); ok && action == "load" && reg == r {
			count++
			continue
		}
		if line.Opcode == "iinc" && len(line.Args) == 2 && line.Args[0] == strconv.Itoa(r) {
			count++
		}
	}
	return count
}

// eliminateStoreLoad removes the first pass of adjacent xstore r; xload r
// pairs whose load is the only read of r, returning how many were removed
func eliminateStoreLoad(m *Method) int {
	removed := 0
	out := make([]Line, 0, len(m.Body))
	for i := 0; i < len(m.Body); i++ {
		if i+1 < len(m.Body) {
			sk, sa, sr, sok := access(m.Body[i])
			lk, la, lr, lok := access(m.Body[i+1])
			if sok && lok && sa == "store" && la == "load" && sk == lk && sr == lr && reads(m, sr) == 1 {
				removed++
				i++
				continue
			}
		}
		out = append(out, m.Body[i])
	}
	m.Body = out
	return removed
}

// compact rewrites xload r / xstore r with r in 0..3 to xload_r / xstore_r
func compact(m *Method) int {
	count := 0
	for i, line := range m.Body {
		kind, action, r, ok := access(line)
		if !ok || len(line.Args) != 1 || r > 3 {
			continue
		}
		m.Body[i] = Op(kind + action + "_" + strconv.Itoa(r))
		count++
	}
	return count
}
