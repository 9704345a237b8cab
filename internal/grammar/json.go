package grammar

import (
	"encoding/json"
	"fmt"
)

type nodeJSON struct {
	Type     string          `json:"type"`
	Category *Category       `json:"category,omitempty"`
	Name     string          `json:"name,omitempty"`
	Strength float64         `json:"strength,omitempty"`
	Head     json.RawMessage `json:"head,omitempty"`
	Tail     json.RawMessage `json:"tail,omitempty"`
	Steps    []nodeJSON      `json:"steps,omitempty"`
}

type treeJSON struct {
	Version string          `json:"version"`
	Seed    int64           `json:"seed"`
	Root    json.RawMessage `json:"root"`
}

func (t *Tree) MarshalJSON() ([]byte, error) {
	root, err := encodeNode(t.Root)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(root)
	if err != nil {
		return nil, err
	}
	return json.Marshal(treeJSON{Version: t.Version, Seed: t.Seed, Root: raw})
}

func (t *Tree) UnmarshalJSON(b []byte) error {
	var tj treeJSON
	if err := json.Unmarshal(b, &tj); err != nil {
		return err
	}
	var nj nodeJSON
	if err := json.Unmarshal(tj.Root, &nj); err != nil {
		return err
	}
	root, err := decodeNode(nj)
	if err != nil {
		return err
	}
	*t = Tree{Root: root, Seed: tj.Seed, Version: tj.Version}
	return nil
}

func encodeNode(n Node) (nodeJSON, error) {
	switch v := n.(type) {
	case *Leaf:
		c := v.Category
		return nodeJSON{Type: "leaf", Category: &c, Name: v.Name, Strength: v.Strength}, nil
	case *Seq:
		head, err := encodeRaw(v.Head)
		if err != nil {
			return nodeJSON{}, err
		}
		tail, err := encodeRaw(v.Tail)
		if err != nil {
			return nodeJSON{}, err
		}
		return nodeJSON{Type: "seq", Head: head, Tail: tail}, nil
	case *VND:
		out := nodeJSON{Type: "vnd", Steps: make([]nodeJSON, len(v.Steps))}
		for i, s := range v.Steps {
			leaf, err := encodeNode(s)
			if err != nil {
				return nodeJSON{}, err
			}
			out.Steps[i] = leaf
		}
		return out, nil
	default:
		return nodeJSON{}, fmt.Errorf("%w: cannot encode node %T", ErrMalformedTree, n)
	}
}

func encodeRaw(n Node) (json.RawMessage, error) {
	nj, err := encodeNode(n)
	if err != nil {
		return nil, err
	}
	return json.Marshal(nj)
}

func decodeNode(nj nodeJSON) (Node, error) {
	switch nj.Type {
	case "leaf":
		if nj.Category == nil {
			return nil, fmt.Errorf("%w: leaf %q without category", ErrMalformedTree, nj.Name)
		}
		return &Leaf{Category: *nj.Category, Name: nj.Name, Strength: nj.Strength}, nil
	case "seq":
		head, err := decodeRaw(nj.Head)
		if err != nil {
			return nil, err
		}
		tail, err := decodeRaw(nj.Tail)
		if err != nil {
			return nil, err
		}
		return &Seq{Head: head, Tail: tail}, nil
	case "vnd":
		v := &VND{Steps: make([]*Leaf, 0, len(nj.Steps))}
		for _, s := range nj.Steps {
			n, err := decodeNode(s)
			if err != nil {
				return nil, err
			}
			leaf, ok := n.(*Leaf)
			if !ok {
				return nil, fmt.Errorf("%w: VND step must be a leaf", ErrMalformedTree)
			}
			v.Steps = append(v.Steps, leaf)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("%w: unknown node type %q", ErrMalformedTree, nj.Type)
	}
}

func decodeRaw(raw json.RawMessage) (Node, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: missing child node", ErrMalformedTree)
	}
	var nj nodeJSON
	if err := json.Unmarshal(raw, &nj); err != nil {
		return nil, err
	}
	return decodeNode(nj)
}
