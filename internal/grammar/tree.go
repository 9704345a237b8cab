// Package grammar generates, validates and renders algorithm trees.
//
// A tree follows
//
//	<Algorithm>  ::= <Constructive> ; <SearchLoop>
//	<SearchLoop> ::= <Local> | <Local> ; <Perturbation> ; <SearchLoop>
//	<Local>      ::= <Improvement> | VND(<Improvement>, ...)
//
// and is encoded as a tagged sum of Leaf, Seq and VND nodes.
package grammar

import (
	"errors"
	"fmt"
	"strings"
)

// Version is bumped whenever Generate would produce a different tree for the
// same seed.
const Version = "1"

var ErrMalformedTree = errors.New("malformed algorithm tree")

type Category int

const (
	Constructive Category = iota
	Improvement
	Perturbation
	Repair
)

func (c Category) String() string {
	switch c {
	case Constructive:
		return "constructive"
	case Improvement:
		return "improvement"
	case Perturbation:
		return "perturbation"
	case Repair:
		return "repair"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "constructive":
		return Constructive, nil
	case "improvement":
		return Improvement, nil
	case "perturbation":
		return Perturbation, nil
	case "repair":
		return Repair, nil
	}
	return 0, fmt.Errorf("%w: unknown category %q", ErrMalformedTree, s)
}

func (c Category) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Category) UnmarshalText(b []byte) error {
	v, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Node is one of *Leaf, *Seq or *VND.
type Node interface {
	node()
}

type Leaf struct {
	Category Category
	Name     string
	// Strength is only meaningful for perturbations.
	Strength float64
}

type Seq struct {
	Head Node
	Tail Node
}

// VND is an ordered list of improvement leaves applied as variable
// neighbourhood descent.
type VND struct {
	Steps []*Leaf
}

func (*Leaf) node() {}
func (*Seq) node()  {}
func (*VND) node()  {}

// Tree is immutable once generated or decoded.
type Tree struct {
	Root    Node
	Seed    int64
	Version string
}

// Local is one local-search slot of a search loop.
type Local struct {
	Steps []string
	VND   bool
}

// Step is a perturbation followed by the local search applied after it.
type Step struct {
	Perturbation string
	Strength     float64
	Local        Local
}

func Improve(name string) Local { return Local{Steps: []string{name}} }

func VNDOf(names ...string) Local { return Local{Steps: names, VND: true} }

// Build assembles a tree by hand. It is how fixed reference algorithms and
// tests describe themselves; it does not validate.
func Build(constructive string, first Local, rest ...Step) *Tree {
	loop := loopNode(first, rest)
	return &Tree{
		Root:    &Seq{Head: &Leaf{Category: Constructive, Name: constructive}, Tail: loop},
		Version: Version,
	}
}

func loopNode(local Local, rest []Step) Node {
	head := localNode(local)
	if len(rest) == 0 {
		return head
	}
	p := &Leaf{Category: Perturbation, Name: rest[0].Perturbation, Strength: rest[0].Strength}
	return &Seq{Head: head, Tail: &Seq{Head: p, Tail: loopNode(rest[0].Local, rest[1:])}}
}

func localNode(l Local) Node {
	if !l.VND && len(l.Steps) == 1 {
		return &Leaf{Category: Improvement, Name: l.Steps[0]}
	}
	v := &VND{Steps: make([]*Leaf, len(l.Steps))}
	for i, s := range l.Steps {
		v.Steps[i] = &Leaf{Category: Improvement, Name: s}
	}
	return v
}

// Shape is the flattened form of a tree: the loop L1;P1;L2;...;Pn-1;Ln.
type Shape struct {
	Constructive  string
	Locals        []Local
	Perturbations []*Leaf
}

// Decompose checks the structural rules and flattens t. Names are not
// checked against any terminal set here.
func Decompose(t *Tree) (Shape, error) {
	var sh Shape
	if t == nil || t.Root == nil {
		return sh, fmt.Errorf("%w: empty tree", ErrMalformedTree)
	}
	root, ok := t.Root.(*Seq)
	if !ok {
		return sh, fmt.Errorf("%w: root must be a sequence", ErrMalformedTree)
	}
	c, ok := root.Head.(*Leaf)
	if !ok || c.Category != Constructive {
		return sh, fmt.Errorf("%w: algorithm must start with a constructive", ErrMalformedTree)
	}
	if c.Name == "" {
		return sh, fmt.Errorf("%w: constructive without a name", ErrMalformedTree)
	}
	sh.Constructive = c.Name

	node := root.Tail
	for {
		if node == nil {
			return sh, fmt.Errorf("%w: search loop without a local search", ErrMalformedTree)
		}
		var head Node = node
		var tail Node
		if s, ok := node.(*Seq); ok {
			head, tail = s.Head, s.Tail
		}
		local, err := decodeLocal(head)
		if err != nil {
			return sh, err
		}
		sh.Locals = append(sh.Locals, local)
		if tail == nil {
			return sh, nil
		}
		pseq, ok := tail.(*Seq)
		if !ok {
			return sh, fmt.Errorf("%w: local search must be followed by a perturbation", ErrMalformedTree)
		}
		p, ok := pseq.Head.(*Leaf)
		if !ok || p.Category != Perturbation {
			return sh, fmt.Errorf("%w: expected a perturbation after local search", ErrMalformedTree)
		}
		if p.Name == "" {
			return sh, fmt.Errorf("%w: perturbation without a name", ErrMalformedTree)
		}
		if p.Strength < 0 || p.Strength > 1 {
			return sh, fmt.Errorf("%w: perturbation %s strength %g outside [0,1]", ErrMalformedTree, p.Name, p.Strength)
		}
		sh.Perturbations = append(sh.Perturbations, p)
		node = pseq.Tail
	}
}

func decodeLocal(n Node) (Local, error) {
	switch v := n.(type) {
	case *Leaf:
		if v.Category != Improvement {
			return Local{}, fmt.Errorf("%w: %s %q where an improvement is required", ErrMalformedTree, v.Category, v.Name)
		}
		if v.Name == "" {
			return Local{}, fmt.Errorf("%w: improvement without a name", ErrMalformedTree)
		}
		return Local{Steps: []string{v.Name}}, nil
	case *VND:
		if len(v.Steps) == 0 {
			return Local{}, fmt.Errorf("%w: empty VND", ErrMalformedTree)
		}
		l := Local{VND: true, Steps: make([]string, 0, len(v.Steps))}
		for _, s := range v.Steps {
			if s == nil || s.Category != Improvement || s.Name == "" {
				return Local{}, fmt.Errorf("%w: VND steps must be named improvements", ErrMalformedTree)
			}
			l.Steps = append(l.Steps, s.Name)
		}
		return l, nil
	default:
		return Local{}, fmt.Errorf("%w: unexpected node %T in search loop", ErrMalformedTree, n)
	}
}

// Validate checks structure only. Grammar.Validate also checks names.
func Validate(t *Tree) error {
	_, err := Decompose(t)
	return err
}

func Valid(t *Tree) bool { return Validate(t) == nil }
