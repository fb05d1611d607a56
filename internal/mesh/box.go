// Package mesh turns pixel columns into STL triangles and streams them to a
// sink as they are produced.
package mesh

import "github.com/hschendel/stl"

// TrianglesPerBox is the number of triangles EmitBox writes: two per face.
const TrianglesPerBox = 12

// TriangleSink receives triangles one at a time.
type TriangleSink interface {
	WriteTriangle(t stl.Triangle) error
	// Close writes any trailer and flushes. It does not close the
	// underlying writer.
	Close() error
}

func add(a, b stl.Vec3) stl.Vec3 {
	return stl.Vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

// appendQuad writes the parallelogram spanned by u and v at p as two
// triangles. u x v must point out of the solid, which makes both triangles
// counter-clockwise seen from outside.
func appendQuad(sink TriangleSink, p, u, v stl.Vec3) error {
	tl := p
	bl := add(p, u)
	tr := add(p, v)
	br := add(bl, v)
	if err := sink.WriteTriangle(stl.Triangle{Vertices: [3]stl.Vec3{tl, bl, tr}}); err != nil {
		return err
	}
	return sink.WriteTriangle(stl.Triangle{Vertices: [3]stl.Vec3{tr, bl, br}})
}

// EmitBox writes the closed box with its bottom-left corner at (x, y, 0),
// a size x size footprint and top face at z = h. Normals are left zero, the
// winding carries the orientation. A zero h gives zero-area walls but still
// exactly TrianglesPerBox triangles.
func EmitBox(sink TriangleSink, x, y, size, h float32) error {
	var (
		o  = stl.Vec3{x, y, 0}
		dx = stl.Vec3{size, 0, 0}
		dy = stl.Vec3{0, size, 0}
		dz = stl.Vec3{0, 0, h}
	)
	faces := [6][3]stl.Vec3{
		{o, dy, dx},          // bottom, -Z
		{add(o, dz), dx, dy}, // top, +Z
		{o, dz, dy},          // left, -X
		{add(o, dx), dy, dz}, // right, +X
		{o, dx, dz},          // front, -Y
		{add(o, dy), dz, dx}, // back, +Y
	}
	for _, f := range faces {
		if err := appendQuad(sink, f[0], f[1], f[2]); err != nil {
			return err
		}
	}
	return nil
}
