package dataset

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/gcp"
	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/kbp"
	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/problem"
	"github.com/gustavoalcantara-aravena/bestbestGAA-sub001/internal/vrptw"
)

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path   string
		want   Format
		domain problem.Domain
	}{
		{"data/myciel3.col", FormatDIMACS, problem.GCP},
		{"C101.TXT", FormatSolomon, problem.VRPTW},
		{"knapPI_1_50_1000.csv", FormatPisinger, problem.KBP},
		{"p10.kbp", FormatPisinger, problem.KBP},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatOf(tt.path))
			d, ok := tt.want.Domain()
			require.True(t, ok)
			assert.Equal(t, tt.domain, d)
		})
	}
	assert.Equal(t, FormatUnknown, FormatOf("graph.dot"))
	_, ok := FormatUnknown.Domain()
	assert.False(t, ok)
	assert.Equal(t, "myciel3", InstanceName("/tmp/x/myciel3.col"))
}

func TestLoadFile(t *testing.T) {
	g, err := LoadFile(filepath.Join("testdata", "myciel3.col"))
	require.NoError(t, err)
	assert.Equal(t, problem.GCP, g.Domain())
	assert.Equal(t, "myciel3", g.Name())
	assert.Equal(t, 11, g.Size())
	assert.Equal(t, 20, g.(*gcp.Instance).NumEdges())
	chi, ok := g.KnownOptimum()
	require.True(t, ok)
	assert.Equal(t, 4.0, chi)

	v, err := LoadFile(filepath.Join("testdata", "tiny.txt"))
	require.NoError(t, err)
	in := v.(*vrptw.Instance)
	assert.Equal(t, "TINY5", in.Name())
	assert.Equal(t, 5, in.Size())
	assert.Equal(t, 3, in.Vehicles())
	assert.Equal(t, 30, in.Capacity())
	assert.Equal(t, vrptw.Node{ID: 4, X: 25, Y: 85, Demand: 20, Ready: 100, Due: 250, Service: 10}, in.Node(4))

	k, err := LoadFile(filepath.Join("testdata", "p10.kp"))
	require.NoError(t, err)
	kp := k.(*kbp.Instance)
	assert.Equal(t, 10, kp.N())
	assert.Equal(t, 165, kp.Capacity())
	z, ok := kp.KnownOptimum()
	require.True(t, ok)
	assert.Equal(t, 309.0, z)
	assert.Equal(t, 92, kp.Value(0))
	assert.Equal(t, 82, kp.Weight(9))

	ld, err := LoadFile(filepath.Join("testdata", "f1_l-d_kp_10_269.kbp"))
	require.NoError(t, err)
	assert.Equal(t, "f1_l-d_kp_10_269", ld.Name())
	assert.Equal(t, 10, ld.Size())
	z, ok = ld.KnownOptimum()
	require.True(t, ok)
	assert.Equal(t, 295.0, z)

	_, err = LoadFile("instance.dot")
	assert.Error(t, err)
	_, err = LoadFile(filepath.Join("testdata", "missing.col"))
	assert.Error(t, err)
}

func TestDIMACSRoundTrip(t *testing.T) {
	g, err := gcp.NewInstance("k4", 4, []gcp.Edge{{U: 0, V: 1}, {U: 0, V: 2}, {U: 0, V: 3}, {U: 1, V: 2}, {U: 1, V: 3}, {U: 2, V: 3}}, gcp.WithChromatic(4))
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, WriteDIMACS(&buf, g))
	assert.Contains(t, buf.String(), "p edge 4 6\n")
	assert.Contains(t, buf.String(), "e 1 2\n")

	back, err := ReadDIMACS(&buf, "k4")
	require.NoError(t, err)
	assert.Equal(t, g.Edges(), back.Edges())
	assert.Equal(t, 1, back.Origin())
	chi, ok := back.Chromatic()
	assert.True(t, ok)
	assert.Equal(t, 4, chi)
}

func TestSolomonRoundTrip(t *testing.T) {
	nodes := []vrptw.Node{
		{ID: 0, X: 35.5, Y: 35, Due: 230},
		{ID: 1, X: 41, Y: 49, Demand: 10, Ready: 161, Due: 171, Service: 10},
		{ID: 2, X: 35, Y: 17.25, Demand: 7, Ready: 50, Due: 60, Service: 10},
	}
	in, err := vrptw.NewInstance("R101-cut", nodes, 200, 25)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, WriteSolomon(&buf, in))

	back, err := ReadSolomon(&buf)
	require.NoError(t, err)
	assert.Equal(t, in.Name(), back.Name())
	assert.Equal(t, in.Capacity(), back.Capacity())
	assert.Equal(t, in.Vehicles(), back.Vehicles())
	assert.Equal(t, in.Nodes(), back.Nodes())
}

func TestPisingerRoundTrip(t *testing.T) {
	in, err := kbp.NewInstance("small", []int{10, 20, 30}, []int{5, 10, 15}, 20, kbp.WithOptimum(40))
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, WritePisinger(&buf, in))

	back, err := ReadPisinger(&buf)
	require.NoError(t, err)
	assert.Equal(t, in.Name(), back.Name())
	assert.Equal(t, in.Values(), back.Values())
	assert.Equal(t, in.Weights(), back.Weights())
	assert.Equal(t, in.Capacity(), back.Capacity())
	z, _ := back.KnownOptimum()
	assert.Equal(t, 40.0, z)
}

func TestReadPisingerLowDimensional(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"counts on two lines", "10\n269\n55 95\n10 4\n47 60\n5 32\n4 23\n50 72\n8 80\n61 62\n85 65\n87 46\n"},
		{"counts on one line", "10 269\n\n55 95\n10 4\n47 60\n5 32\n4 23\n50 72\n8 80\n61 62\n85 65\n87 46\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, err := ReadPisinger(strings.NewReader(tt.in))
			require.NoError(t, err)
			assert.Equal(t, 10, k.N())
			assert.Equal(t, 269, k.Capacity())
			assert.Equal(t, []int{55, 10, 47, 5, 4, 50, 8, 61, 85, 87}, k.Values())
			assert.Equal(t, []int{95, 4, 60, 32, 23, 72, 80, 62, 65, 46}, k.Weights())
			_, ok := k.KnownOptimum()
			assert.False(t, ok)
		})
	}
}

func TestLowDimRoundTrip(t *testing.T) {
	in, err := kbp.NewInstance("ld", []int{10, 20, 30}, []int{5, 10, 15}, 20, kbp.WithOptimum(40))
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, WriteLowDim(&buf, in))
	assert.Equal(t, "3\n20\n10 5\n20 10\n30 15\n40\n", buf.String())

	back, err := ReadLowDim(&buf, "ld")
	require.NoError(t, err)
	assert.Equal(t, in.Name(), back.Name())
	assert.Equal(t, in.Values(), back.Values())
	assert.Equal(t, in.Weights(), back.Weights())
	assert.Equal(t, in.Capacity(), back.Capacity())
	z, ok := back.KnownOptimum()
	require.True(t, ok)
	assert.Equal(t, 40.0, z)
}

func TestReadPisingerAll(t *testing.T) {
	a, err := kbp.NewInstance("a", []int{1, 2}, []int{1, 1}, 1)
	require.NoError(t, err)
	b, err := kbp.NewInstance("b", []int{3}, []int{2}, 2, kbp.WithOptimum(3))
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, WritePisinger(&buf, a))
	require.NoError(t, WritePisinger(&buf, b))
	raw := buf.String()

	all, err := ReadPisingerAll(strings.NewReader(raw))
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].Name())
	assert.Equal(t, "b", all[1].Name())

	first, err := ReadPisinger(strings.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, "a", first.Name())
}

func TestReadersRejectMalformedFiles(t *testing.T) {
	tests := []struct {
		name string
		read func(string) error
		in   string
	}{
		{"dimacs edge before header", dimacs, "e 1 2\np edge 2 1\n"},
		{"dimacs bad vertex", dimacs, "p edge 2 1\ne 1 x\n"},
		{"dimacs vertex out of range", dimacs, "p edge 2 1\ne 1 3\n"},
		{"dimacs no header", dimacs, "c empty\n"},
		{"dimacs unknown line", dimacs, "p edge 2 1\nx 1 2\n"},
		{"solomon no vehicle block", solomon, "C1\nCUSTOMER\n"},
		{"solomon short row", solomon, "C1\nVEHICLE\nNUMBER CAPACITY\n1 10\nCUSTOMER\n0 0 0 0 0 100\n"},
		{"solomon out of order", solomon, "C1\nVEHICLE\n1 10\nCUSTOMER\n0 0 0 0 0 100 0\n2 1 1 1 0 100 0\n"},
		{"solomon truncated", solomon, "C1\nVEHICLE\n1 10\n"},
		{"pisinger item count", pisinger, "p\nn 2\nc 10\nz 0\n1,1,1,0\n-----\n"},
		{"pisinger bad weight", pisinger, "p\nn 1\nc 10\n1,1,0,0\n"},
		{"pisinger row before n", pisinger, "p\n1,1,1,0\n"},
		{"pisinger empty", pisinger, "\n\n"},
		{"low-dim short", pisinger, "3\n10\n1 1\n2 2\n"},
		{"low-dim bad row", pisinger, "2\n10\n1 1\n2 x\n"},
		{"low-dim missing capacity", pisinger, "2\n"},
		{"low-dim trailing data", pisinger, "1\n10\n1 1\n5\n6\n"},
		{"low-dim zero items", pisinger, "0 10\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.read(tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, problem.ErrMalformedInstance), "got %v", err)
		})
	}
}

func dimacs(s string) error {
	_, err := ReadDIMACS(strings.NewReader(s), "g")
	return err
}

func solomon(s string) error {
	_, err := ReadSolomon(strings.NewReader(s))
	return err
}

func pisinger(s string) error {
	_, err := ReadPisinger(strings.NewReader(s))
	return err
}
