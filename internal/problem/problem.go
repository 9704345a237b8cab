// Package problem holds what the three benchmark domains share: the domain
// tag, the read-only instance façade and the construction error.
package problem

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ErrMalformedInstance is wrapped by every instance constructor that rejects its input.
var ErrMalformedInstance = errors.New("malformed instance")

type Domain int

const (
	GCP Domain = iota
	KBP
	VRPTW
)

func (d Domain) String() string {
	switch d {
	case GCP:
		return "GCP"
	case KBP:
		return "KBP"
	case VRPTW:
		return "VRPTW"
	default:
		return fmt.Sprintf("domain(%d)", int(d))
	}
}

// ParseDomain accepts the family names used in configs and on the command line.
func ParseDomain(s string) (Domain, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "GCP":
		return GCP, nil
	case "KBP", "KP":
		return KBP, nil
	case "VRPTW":
		return VRPTW, nil
	}
	return 0, fmt.Errorf("unknown problem family %q", s)
}

// Domains lists the supported families in a stable order.
func Domains() []Domain {
	return []Domain{GCP, KBP, VRPTW}
}

// Instance is implemented by gcp.Instance, kbp.Instance and vrptw.Instance.
// Instances are frozen after construction.
type Instance interface {
	Domain() Domain
	Name() string
	// Size is the number of decision elements: vertices, items or customers.
	Size() int
	KnownOptimum() (float64, bool)
}

// Malformed builds an error wrapping ErrMalformedInstance.
func Malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedInstance, fmt.Sprintf(format, args...))
}

// HashInts hashes the concatenation of the given integer sequences. Each
// sequence is prefixed by its length so that ([1 2],[3]) and ([1],[2 3])
// differ.
func HashInts(seqs ...[]int) uint64 {
	d := xxhash.New()
	var buf [8]byte
	put := func(v int) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		_, _ = d.Write(buf[:])
	}
	for _, s := range seqs {
		put(len(s))
		for _, v := range s {
			put(v)
		}
	}
	return d.Sum64()
}
