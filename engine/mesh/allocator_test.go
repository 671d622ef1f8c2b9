package mesh

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

func TestAllocatorPackUint16(t *testing.T) {
	a := NewAllocator(WithWorkers(2))
	defer a.Close()

	m := quad()
	m.Submeshes[0].Indices = []uint32{0, 1, 2}
	p, err := a.Pack(m)
	if err != nil {
		t.Fatal(err)
	}
	if p.VertexCount != 4 || p.Stride != VertexSize || len(p.VertexData) != 4*VertexSize {
		t.Fatalf("vertex data = %d bytes, count %d, stride %d", len(p.VertexData), p.VertexCount, p.Stride)
	}
	ps := p.Submeshes[0]
	if ps.Format != IndexUint16 || ps.IndexCount != 3 {
		t.Fatalf("submesh = %+v", ps)
	}
	// 3 uint16 indices pad from 6 to 8 bytes.
	if len(ps.IndexData) != 8 {
		t.Fatalf("index data = %d bytes, want 8", len(ps.IndexData))
	}
	for i, want := range []uint16{0, 1, 2, 0} {
		if got := binary.LittleEndian.Uint16(ps.IndexData[i*2:]); got != want {
			t.Errorf("index %d = %d, want %d", i, got, want)
		}
	}
}

func TestAllocatorPackChunked(t *testing.T) {
	a := NewAllocator(WithWorkers(4), WithChunkSize(7))
	defer a.Close()

	m, err := NewSphere(WithSegments(20, 10))
	if err != nil {
		t.Fatal(err)
	}
	p, err := a.Pack(m)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range m.Vertices {
		off := i * VertexSize
		for k := 0; k < 3; k++ {
			got := math.Float32frombits(binary.LittleEndian.Uint32(p.VertexData[off+k*4:]))
			if got != v.Position[k] {
				t.Fatalf("vertex %d component %d = %v, want %v", i, k, got, v.Position[k])
			}
		}
	}
	idx := m.Submeshes[0].Indices
	for i, want := range idx {
		if got := binary.LittleEndian.Uint16(p.Submeshes[0].IndexData[i*2:]); uint32(got) != want {
			t.Fatalf("index %d = %d, want %d", i, got, want)
		}
	}
}

func TestAllocatorPackUint32(t *testing.T) {
	a := NewAllocator(WithChunkSize(1 << 14))
	defer a.Close()

	m := &Mesh{Name: "big", Vertices: make([]Vertex, 70000)}
	m.Submeshes = []Submesh{{Indices: []uint32{0, 1, 69999}}}
	p, err := a.Pack(m)
	if err != nil {
		t.Fatal(err)
	}
	ps := p.Submeshes[0]
	if ps.Format != IndexUint32 || len(ps.IndexData) != 12 {
		t.Fatalf("format %v, %d bytes", ps.Format, len(ps.IndexData))
	}
	if got := binary.LittleEndian.Uint32(ps.IndexData[8:]); got != 69999 {
		t.Errorf("last index = %d", got)
	}
}

func TestAllocatorRejectsInvalidMesh(t *testing.T) {
	a := NewAllocator()
	defer a.Close()

	if _, err := a.Pack(&Mesh{}); !errors.Is(err, ErrInvalidMesh) {
		t.Errorf("Pack(empty) error = %v", err)
	}
	if _, err := a.Pack(nil); !errors.Is(err, ErrInvalidMesh) {
		t.Errorf("Pack(nil) error = %v", err)
	}
}

func TestAllocatorClosed(t *testing.T) {
	a := NewAllocator()
	a.Close()
	a.Close()
	if _, err := a.Pack(quad()); err == nil {
		t.Error("expected error packing after Close")
	}
}
