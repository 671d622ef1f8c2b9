package mesh

import "github.com/Carmen-Shannon/oxy-playground/common"

// TrianglesToLines converts a triangle submesh into a line submesh holding every unique edge once,
// in first-seen order. Line submeshes are returned unchanged.
//
// Parameters:
//   - sm: the submesh to convert
//
// Returns:
//   - Submesh: a copy of sm with Geometry set to GeometryLines and the edge index pairs
func TrianglesToLines(sm Submesh) Submesh {
	if sm.Geometry == GeometryLines {
		return sm
	}

	type edge struct{ a, b uint32 }
	seen := make(map[edge]struct{}, len(sm.Indices))
	lines := make([]uint32, 0, len(sm.Indices))
	add := func(a, b uint32) {
		if a == b {
			return
		}
		k := edge{a, b}
		if b < a {
			k = edge{b, a}
		}
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		lines = append(lines, a, b)
	}

	for t := 0; t+2 < len(sm.Indices); t += 3 {
		i0, i1, i2 := sm.Indices[t], sm.Indices[t+1], sm.Indices[t+2]
		add(i0, i1)
		add(i1, i2)
		add(i2, i0)
	}

	out := sm
	out.Indices = lines
	out.Geometry = GeometryLines
	return out
}

// GenerateNormals fills in the normal of every vertex whose normal is the zero vector.
// Each such vertex gets the normalized sum of the area-weighted face normals of the triangles that use it.
// Vertices that already carry a normal, and vertices used by no triangle, are left untouched.
//
// Parameters:
//   - m: the mesh to update in place
//
// Returns:
//   - int: the number of vertices that received a generated normal
func GenerateNormals(m *Mesh) int {
	missing := make([]bool, len(m.Vertices))
	anyMissing := false
	for i := range m.Vertices {
		if m.Vertices[i].Normal == ([3]float32{}) {
			missing[i] = true
			anyMissing = true
		}
	}
	if !anyMissing {
		return 0
	}

	acc := make([][3]float32, len(m.Vertices))
	for s := range m.Submeshes {
		sm := &m.Submeshes[s]
		if sm.Geometry != GeometryTriangles {
			continue
		}
		for t := 0; t+2 < len(sm.Indices); t += 3 {
			i0, i1, i2 := sm.Indices[t], sm.Indices[t+1], sm.Indices[t+2]
			if int(i0) >= len(m.Vertices) || int(i1) >= len(m.Vertices) || int(i2) >= len(m.Vertices) {
				continue
			}
			p0 := m.Vertices[i0].Position
			face := common.Cross3(
				common.Sub3(m.Vertices[i1].Position, p0),
				common.Sub3(m.Vertices[i2].Position, p0),
			)
			for _, idx := range [3]uint32{i0, i1, i2} {
				if missing[idx] {
					acc[idx] = common.Add3(acc[idx], face)
				}
			}
		}
	}

	n := 0
	for i := range m.Vertices {
		if !missing[i] || acc[i] == ([3]float32{}) {
			continue
		}
		m.Vertices[i].Normal = common.Normalize3(acc[i])
		n++
	}
	return n
}
