package dataset

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/kbp"
	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/problem"
)

const pisingerSeparator = "-----"

// lowDimName names instances read from the low-dimensional layout, which
// carries no name of its own. LoadFile uses the file name instead.
const lowDimName = "knapsack"

// ReadPisinger returns the first instance of a Pisinger file in either the
// blocked layout (see ReadPisingerAll) or the low-dimensional one (see
// ReadLowDim).
func ReadPisinger(r io.Reader) (*kbp.Instance, error) {
	return readFirstPisinger(r, lowDimName)
}

func readFirstPisinger(r io.Reader, name string) (*kbp.Instance, error) {
	all, err := readPisinger(r, 1, name)
	if err != nil {
		return nil, err
	}
	return all[0], nil
}

// ReadLowDim reads the low-dimensional layout:
//
//	<items>
//	<capacity>
//	<value> <weight>
//	...
//	[<optimum>]
//
// The first line may also hold both counts, as in "<items> <capacity>". An
// optional last line with a single number is the known optimum.
func ReadLowDim(r io.Reader, name string) (*kbp.Instance, error) {
	in := newLines(r)
	if !in.skipBlank() {
		if err := in.err(); err != nil {
			return nil, err
		}
		return nil, in.errorf("no instance found")
	}
	return readLowDim(in, name)
}

// ReadPisingerAll returns every instance of a Pisinger file. Each block is
//
//	<name>
//	n <items>
//	c <capacity>
//	z <optimum>
//	time <seconds>
//	<index>,<value>,<weight>,<in optimum>
//	...
//	-----
//
// Item rows may also be separated by blanks.
func ReadPisingerAll(r io.Reader) ([]*kbp.Instance, error) {
	return readPisinger(r, 0, lowDimName)
}

type pisingerBlock struct {
	name            string
	n, capacity, z  int
	values, weights []int
}

func (b *pisingerBlock) build() (*kbp.Instance, error) {
	if len(b.values) != b.n {
		return nil, problem.Malformed("instance %q declares %d items, found %d", b.name, b.n, len(b.values))
	}
	return kbp.NewInstance(b.name, b.values, b.weights, b.capacity, kbp.WithOptimum(b.z))
}

// readPisinger stops after limit instances when limit > 0. A file whose
// first line is numeric is read as one low-dimensional instance called name.
func readPisinger(r io.Reader, limit int, name string) ([]*kbp.Instance, error) {
	in := newLines(r)
	if !in.skipBlank() {
		if err := in.err(); err != nil {
			return nil, err
		}
		return nil, in.errorf("no instance found")
	}
	if _, ok := parseInts(in.text); ok {
		k, err := readLowDim(in, name)
		if err != nil {
			return nil, err
		}
		return []*kbp.Instance{k}, nil
	}

	var (
		out []*kbp.Instance
		cur *pisingerBlock
	)
	first := true
	flush := func() error {
		if cur == nil {
			return nil
		}
		inst, err := cur.build()
		if err != nil {
			return err
		}
		out = append(out, inst)
		cur = nil
		return nil
	}
	for first || in.next() {
		first = false
		if limit > 0 && len(out) >= limit {
			break
		}
		if in.text == "" {
			continue
		}
		if in.text == pisingerSeparator {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		if cur == nil {
			cur = &pisingerBlock{name: in.text, n: -1}
			continue
		}
		fields := strings.FieldsFunc(in.text, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
		switch fields[0] {
		case "n", "c", "z":
			if len(fields) != 2 {
				return nil, in.errorf("header %q needs one value", fields[0])
			}
			v, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, in.errorf("header %q: %v", fields[0], err)
			}
			switch fields[0] {
			case "n":
				cur.n = v
				cur.values = make([]int, 0, v)
				cur.weights = make([]int, 0, v)
			case "c":
				cur.capacity = v
			case "z":
				cur.z = v
			}
		case "time":
		default:
			if cur.n < 0 {
				return nil, in.errorf("item row before 'n' header")
			}
			if len(fields) < 3 {
				return nil, in.errorf("item row needs '<index>,<value>,<weight>'")
			}
			idx, err := strconv.Atoi(fields[0])
			if err != nil {
				return nil, in.errorf("item index %q: %v", fields[0], err)
			}
			if idx != len(cur.values)+1 {
				return nil, in.errorf("item %d out of order, expected %d", idx, len(cur.values)+1)
			}
			v, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, in.errorf("value %q: %v", fields[1], err)
			}
			w, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, in.errorf("weight %q: %v", fields[2], err)
			}
			cur.values = append(cur.values, v)
			cur.weights = append(cur.weights, w)
		}
	}
	if err := in.err(); err != nil {
		return nil, err
	}
	if limit == 0 || len(out) < limit {
		if err := flush(); err != nil {
			return nil, err
		}
	}
	if len(out) == 0 {
		return nil, in.errorf("no instance found")
	}
	return out, nil
}

// WritePisinger writes k as one block. The last column marks membership in
// an optimal selection, which an instance does not carry, so it is 0.
func WritePisinger(w io.Writer, k *kbp.Instance) error {
	bw := bufio.NewWriter(w)
	z := 0
	if opt, ok := k.KnownOptimum(); ok {
		z = int(opt)
	}
	fmt.Fprintf(bw, "%s\nn %d\nc %d\nz %d\ntime 0.00\n", k.Name(), k.N(), k.Capacity(), z)
	for i := 0; i < k.N(); i++ {
		fmt.Fprintf(bw, "%d,%d,%d,0\n", i+1, k.Value(i), k.Weight(i))
	}
	bw.WriteString(pisingerSeparator + "\n")
	return bw.Flush()
}

// readLowDim parses the low-dimensional layout starting at the current line.
func readLowDim(in *lines, name string) (*kbp.Instance, error) {
	head, ok := parseInts(in.text)
	if !ok || len(head) > 2 {
		return nil, in.errorf("header needs '<items>' or '<items> <capacity>'")
	}
	n := head[0]
	if n <= 0 {
		return nil, in.errorf("item count must be positive (got %d)", n)
	}
	var capacity int
	if len(head) == 2 {
		capacity = head[1]
	} else {
		if !in.skipBlank() {
			return nil, in.errorf("missing capacity line")
		}
		c, ok := parseInts(in.text)
		if !ok || len(c) != 1 {
			return nil, in.errorf("capacity line needs one integer")
		}
		capacity = c[0]
	}

	values := make([]int, 0, n)
	weights := make([]int, 0, n)
	for len(values) < n {
		if !in.skipBlank() {
			if err := in.err(); err != nil {
				return nil, err
			}
			return nil, problem.Malformed("instance %q declares %d items, found %d", name, n, len(values))
		}
		row, ok := parseInts(in.text)
		if !ok || len(row) != 2 {
			return nil, in.errorf("item row needs '<value> <weight>'")
		}
		values = append(values, row[0])
		weights = append(weights, row[1])
	}

	var opts []kbp.InstanceOption
	if in.skipBlank() {
		z, ok := parseInts(in.text)
		if !ok || len(z) != 1 {
			return nil, in.errorf("expected the optimum or end of file after %d items", n)
		}
		opts = append(opts, kbp.WithOptimum(z[0]))
		if in.skipBlank() {
			return nil, in.errorf("unexpected data after the optimum")
		}
	}
	if err := in.err(); err != nil {
		return nil, err
	}
	return kbp.NewInstance(name, values, weights, capacity, opts...)
}

// parseInts reads a line of space separated integers.
func parseInts(s string) ([]int, bool) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, false
	}
	out := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// WriteLowDim writes k in the low-dimensional layout, with the optimum on
// the last line when k knows it.
func WriteLowDim(w io.Writer, k *kbp.Instance) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n%d\n", k.N(), k.Capacity())
	for i := 0; i < k.N(); i++ {
		fmt.Fprintf(bw, "%d %d\n", k.Value(i), k.Weight(i))
	}
	if z, ok := k.KnownOptimum(); ok {
		fmt.Fprintf(bw, "%d\n", int(z))
	}
	return bw.Flush()
}
