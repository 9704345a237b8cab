package grammar

import (
	"fmt"
	"strings"
)

// Stats summarises a tree for algorithm.json and logs.
type Stats struct {
	Depth         int `json:"depth"`
	NodeCount     int `json:"node_count"`
	Constructives int `json:"constructives"`
	Improvements  int `json:"improvements"`
	Perturbations int `json:"perturbations"`
	VNDs          int `json:"vnds"`
}

// ComputeStats walks t. Depth is the number of search-loop levels.
func ComputeStats(t *Tree) Stats {
	var st Stats
	if t == nil {
		return st
	}
	var walk func(Node)
	walk = func(n Node) {
		switch v := n.(type) {
		case *Leaf:
			st.NodeCount++
			switch v.Category {
			case Constructive:
				st.Constructives++
			case Improvement:
				st.Improvements++
			case Perturbation:
				st.Perturbations++
			}
		case *Seq:
			st.NodeCount++
			walk(v.Head)
			walk(v.Tail)
		case *VND:
			st.NodeCount++
			st.VNDs++
			for _, s := range v.Steps {
				walk(s)
			}
		}
	}
	walk(t.Root)
	st.Depth = st.Perturbations + 1
	return st
}

// Text renders t as indented pseudocode.
func Text(t *Tree) string {
	sh, err := Decompose(t)
	if err != nil {
		return fmt.Sprintf("<invalid tree: %v>", err)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "ALGORITHM seed=%d\n", t.Seed)
	fmt.Fprintf(&b, "  s = %s()\n", sh.Constructive)
	fmt.Fprintf(&b, "  s = %s(s)\n", localText(sh.Locals[0]))
	if len(sh.Perturbations) == 0 {
		b.WriteString("  return s\n")
		return b.String()
	}
	b.WriteString("  repeat until budget exhausted\n")
	for i, p := range sh.Perturbations {
		fmt.Fprintf(&b, "    s' = %s(s, %.2f)\n", p.Name, p.Strength)
		fmt.Fprintf(&b, "    s' = %s(s')\n", localText(sh.Locals[i+1]))
		b.WriteString("    s = accept(s, s')\n")
	}
	b.WriteString("  return best\n")
	return b.String()
}

func localText(l Local) string {
	if !l.VND {
		return l.Steps[0]
	}
	return "VND(" + strings.Join(l.Steps, ", ") + ")"
}

// Signature is a compact one-line form used to detect duplicate trees.
func Signature(t *Tree) string {
	sh, err := Decompose(t)
	if err != nil {
		return ""
	}
	parts := []string{sh.Constructive, localText(sh.Locals[0])}
	for i, p := range sh.Perturbations {
		parts = append(parts, fmt.Sprintf("%s@%.2f", p.Name, p.Strength), localText(sh.Locals[i+1]))
	}
	return strings.Join(parts, ";")
}
