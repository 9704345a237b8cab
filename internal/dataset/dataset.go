// Package dataset reads and writes the benchmark file formats: DIMACS
// graphs for colouring, Solomon tables for VRPTW and Pisinger item lists
// for knapsack. Every reader returns a validated domain instance; syntax
// errors wrap problem.ErrMalformedInstance with the offending line number.
package dataset

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/problem"
)

// Format is a supported file layout.
type Format int

const (
	FormatUnknown Format = iota
	FormatDIMACS
	FormatSolomon
	FormatPisinger
)

func (f Format) String() string {
	switch f {
	case FormatDIMACS:
		return "dimacs"
	case FormatSolomon:
		return "solomon"
	case FormatPisinger:
		return "pisinger"
	default:
		return "unknown"
	}
}

// Domain is the problem family a format describes.
func (f Format) Domain() (problem.Domain, bool) {
	switch f {
	case FormatDIMACS:
		return problem.GCP, true
	case FormatSolomon:
		return problem.VRPTW, true
	case FormatPisinger:
		return problem.KBP, true
	}
	return 0, false
}

// FormatOf picks the format from the file extension.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".col":
		return FormatDIMACS
	case ".txt":
		return FormatSolomon
	case ".kp", ".kbp", ".csv":
		return FormatPisinger
	}
	return FormatUnknown
}

// InstanceName is the file name without directory and extension.
func InstanceName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// LoadFile reads the instance stored at path. Pisinger files may hold
// several instances; only the first is returned.
func LoadFile(path string) (problem.Instance, error) {
	format := FormatOf(path)
	if format == FormatUnknown {
		return nil, fmt.Errorf("load %s: unsupported extension %q", path, filepath.Ext(path))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	defer f.Close()

	var inst problem.Instance
	switch format {
	case FormatDIMACS:
		inst, err = ReadDIMACS(f, InstanceName(path))
	case FormatSolomon:
		inst, err = ReadSolomon(f)
	case FormatPisinger:
		inst, err = readFirstPisinger(f, InstanceName(path))
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return inst, nil
}

// lines yields trimmed lines with their 1-based numbers.
type lines struct {
	sc   *bufio.Scanner
	line int
	text string
}

func newLines(r io.Reader) *lines {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	return &lines{sc: sc}
}

func (l *lines) next() bool {
	if !l.sc.Scan() {
		return false
	}
	l.line++
	l.text = strings.TrimSpace(l.sc.Text())
	return true
}

// skipBlank advances to the next non-empty line.
func (l *lines) skipBlank() bool {
	for l.next() {
		if l.text != "" {
			return true
		}
	}
	return false
}

func (l *lines) err() error { return l.sc.Err() }

func (l *lines) errorf(format string, args ...any) error {
	return problem.Malformed("line %d: %s", l.line, fmt.Sprintf(format, args...))
}
