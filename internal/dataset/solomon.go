package dataset

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/vrptw"
)

type solomonSection int

const (
	sectionName solomonSection = iota
	sectionVehicle
	sectionFleet
	sectionCustomer
	sectionNodes
)

// ReadSolomon parses a Solomon benchmark file: the instance name, a VEHICLE
// block with the fleet size and capacity, and a CUSTOMER table whose first
// row is the depot. Rows must be numbered 0, 1, 2, ... in order.
func ReadSolomon(r io.Reader) (*vrptw.Instance, error) {
	in := newLines(r)
	var (
		name               string
		vehicles, capacity int
		nodes              []vrptw.Node
	)
	section := sectionName
	for in.next() {
		if in.text == "" {
			continue
		}
		upper := strings.ToUpper(in.text)
		switch section {
		case sectionName:
			name = in.text
			section = sectionVehicle
		case sectionVehicle:
			if upper != "VEHICLE" {
				return nil, in.errorf("expected VEHICLE, got %q", in.text)
			}
			section = sectionFleet
		case sectionFleet:
			if strings.HasPrefix(upper, "NUMBER") {
				continue
			}
			fields := strings.Fields(in.text)
			if len(fields) != 2 {
				return nil, in.errorf("fleet line needs '<vehicles> <capacity>'")
			}
			var err error
			if vehicles, err = strconv.Atoi(fields[0]); err != nil {
				return nil, in.errorf("vehicle count %q: %v", fields[0], err)
			}
			if capacity, err = strconv.Atoi(fields[1]); err != nil {
				return nil, in.errorf("capacity %q: %v", fields[1], err)
			}
			section = sectionCustomer
		case sectionCustomer:
			if upper != "CUSTOMER" {
				return nil, in.errorf("expected CUSTOMER, got %q", in.text)
			}
			section = sectionNodes
		case sectionNodes:
			if strings.HasPrefix(upper, "CUST") {
				continue
			}
			node, err := parseNode(strings.Fields(in.text))
			if err != nil {
				return nil, in.errorf("%v", err)
			}
			if node.ID != len(nodes) {
				return nil, in.errorf("customer %d out of order, expected %d", node.ID, len(nodes))
			}
			nodes = append(nodes, node)
		}
	}
	if err := in.err(); err != nil {
		return nil, err
	}
	if section != sectionNodes {
		return nil, in.errorf("truncated file")
	}
	return vrptw.NewInstance(name, nodes, capacity, vehicles)
}

func parseNode(fields []string) (vrptw.Node, error) {
	if len(fields) != 7 {
		return vrptw.Node{}, fmt.Errorf("customer row needs 7 columns, got %d", len(fields))
	}
	var (
		node vrptw.Node
		err  error
	)
	if node.ID, err = strconv.Atoi(fields[0]); err != nil {
		return node, fmt.Errorf("customer number %q: %w", fields[0], err)
	}
	if node.Demand, err = strconv.Atoi(fields[3]); err != nil {
		return node, fmt.Errorf("demand %q: %w", fields[3], err)
	}
	floats := []*float64{&node.X, &node.Y, nil, &node.Ready, &node.Due, &node.Service}
	for i, dst := range floats {
		if dst == nil {
			continue
		}
		if *dst, err = strconv.ParseFloat(fields[i+1], 64); err != nil {
			return node, fmt.Errorf("column %d %q: %w", i+2, fields[i+1], err)
		}
	}
	return node, nil
}

// WriteSolomon writes in in the column layout of the published benchmark.
// Rows are numbered by position, so node IDs are not consulted.
func WriteSolomon(w io.Writer, in *vrptw.Instance) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\n\nVEHICLE\nNUMBER     CAPACITY\n%6d %12d\n\n", in.Name(), in.Vehicles(), in.Capacity())
	bw.WriteString("CUSTOMER\n")
	bw.WriteString("CUST NO.  XCOORD.    YCOORD.    DEMAND   READY TIME  DUE DATE   SERVICE   TIME\n\n")
	for i, n := range in.Nodes() {
		fmt.Fprintf(bw, "%5d %10s %10s %10d %10s %10s %10s\n",
			i, ftoa(n.X), ftoa(n.Y), n.Demand, ftoa(n.Ready), ftoa(n.Due), ftoa(n.Service))
	}
	return bw.Flush()
}

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
