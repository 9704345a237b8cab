package dataset

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/gcp"
)

// ReadDIMACS parses the DIMACS edge format:
//
//	c comment
//	c chromatic 4
//	p edge <vertices> <edges>
//	e <u> <v>
//
// A "c chromatic k" comment records the known chromatic number. Vertex
// numbering is detected by gcp.NewInstance.
func ReadDIMACS(r io.Reader, name string) (*gcp.Instance, error) {
	in := newLines(r)
	n := -1
	chi := 0
	var edges []gcp.Edge
	for in.next() {
		if in.text == "" {
			continue
		}
		fields := strings.Fields(in.text)
		switch fields[0] {
		case "c":
			if len(fields) == 3 && strings.EqualFold(strings.TrimSuffix(fields[1], ":"), "chromatic") {
				k, err := strconv.Atoi(fields[2])
				if err != nil {
					return nil, in.errorf("chromatic number %q: %v", fields[2], err)
				}
				chi = k
			}
		case "p":
			if n >= 0 {
				return nil, in.errorf("second problem line")
			}
			if len(fields) != 4 {
				return nil, in.errorf("problem line needs 'p edge <vertices> <edges>'")
			}
			v, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, in.errorf("vertex count %q: %v", fields[2], err)
			}
			m, err := strconv.Atoi(fields[3])
			if err != nil {
				return nil, in.errorf("edge count %q: %v", fields[3], err)
			}
			n = v
			edges = make([]gcp.Edge, 0, m)
		case "e":
			if n < 0 {
				return nil, in.errorf("edge before problem line")
			}
			if len(fields) != 3 {
				return nil, in.errorf("edge line needs 'e <u> <v>'")
			}
			u, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, in.errorf("vertex %q: %v", fields[1], err)
			}
			v, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, in.errorf("vertex %q: %v", fields[2], err)
			}
			edges = append(edges, gcp.Edge{U: u, V: v})
		default:
			return nil, in.errorf("unknown line type %q", fields[0])
		}
	}
	if err := in.err(); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, in.errorf("missing problem line")
	}
	var opts []gcp.InstanceOption
	if chi > 0 {
		opts = append(opts, gcp.WithChromatic(chi))
	}
	return gcp.NewInstance(name, n, edges, opts...)
}

// WriteDIMACS writes g with 1-based vertices.
func WriteDIMACS(w io.Writer, g *gcp.Instance) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "c %s\n", g.Name())
	if k, ok := g.Chromatic(); ok {
		fmt.Fprintf(bw, "c chromatic %d\n", k)
	}
	fmt.Fprintf(bw, "p edge %d %d\n", g.N(), g.NumEdges())
	for _, e := range g.Edges() {
		fmt.Fprintf(bw, "e %d %d\n", e.U+1, e.V+1)
	}
	return bw.Flush()
}
