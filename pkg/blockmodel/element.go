package blockmodel

import "github.com/go-gl/mathgl/mgl32"

// faceCorners picks, per face, four of the eight box corners. Corner index
// bits select "to" over "from": bit 0 for X, bit 1 for Y, bit 2 for Z.
var faceCorners = [6][4]int{
	West:  {0, 4, 2, 6},
	Down:  {0, 1, 4, 5},
	North: {1, 0, 3, 2},
	South: {4, 5, 6, 7},
	Up:    {6, 7, 2, 3},
	East:  {5, 1, 7, 3},
}

// Corner returns box corner i (0..7).
func (e Element) Corner(i int) mgl32.Vec3 {
	v := mgl32.Vec3(e.From)
	if i&0x1 != 0 {
		v[0] = e.To[0]
	}
	if i&0x2 != 0 {
		v[1] = e.To[1]
	}
	if i&0x4 != 0 {
		v[2] = e.To[2]
	}
	return v
}

// FaceVertices returns the four corners of face d in model units.
func (e Element) FaceVertices(d Direction) [4]mgl32.Vec3 {
	var out [4]mgl32.Vec3
	for i, c := range faceCorners[d] {
		out[i] = e.Corner(c)
	}
	return out
}

// Face returns the face definition for d, if the element has one.
func (e Element) Face(d Direction) (Face, bool) {
	f, ok := e.Faces[d.String()]
	return f, ok
}
