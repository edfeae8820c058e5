package atlas

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"mcbake/pkg/blockmodel"
)

// Texture turns needed to undo a flipped uv rectangle, indexed by
// bit 0 (u flipped) and bit 1 (v flipped).
var uvTurns = [4]int{0, 270, 90, 180}

// Texture turns implied by which vertex of the projected quad is its
// minimum corner.
var quadTurns = [4]int{90, 180, 0, 270}

// rect is an axis-aligned rectangle in model units: x0, y0, x1, y1.
type rect [4]float32

// pixels snaps r outward to whole units scaled by (sx, sy).
func (r rect) pixels(sx, sy float32) (x0, y0, x1, y1 int) {
	x0 = int(math.Floor(float64(r[0] * sx)))
	y0 = int(math.Floor(float64(r[1] * sy)))
	x1 = int(math.Ceil(float64(r[2] * sx)))
	y1 = int(math.Ceil(float64(r[3] * sy)))
	return
}

// rectified is a face projected onto the XZ plane with everything needed to
// paste its texture there.
type rectified struct {
	quad     rect
	uv       rect
	rotation int
	height   float32
	texture  string
}

func rectify(f blockmodel.OrientedFace) rectified {
	quad, qr := rectifyQuad(f.Vertices)
	uv, ur := rectifyUV(f.Face.UV)
	return rectified{
		quad:     quad,
		uv:       uv,
		rotation: ((qr+ur+f.Face.Rotation)%360 + 360) % 360,
		height:   f.Height(),
		texture:  f.Face.Texture,
	}
}

func rectifyUV(uv [4]float32) (rect, int) {
	r := rect(uv)
	k := 0
	if r[0] > r[2] {
		k |= 0x1
		r[0], r[2] = r[2], r[0]
	}
	if r[1] > r[3] {
		k |= 0x2
		r[1], r[3] = r[3], r[1]
	}
	return r, uvTurns[k]
}

// rectifyQuad projects the vertices onto XZ. The last vertex that is no
// greater than the current minimum on both axes wins, likewise for the
// maximum.
func rectifyQuad(verts [4]mgl32.Vec3) (rect, int) {
	imin, imax := 0, 0
	for i := 1; i < len(verts); i++ {
		v := verts[i]
		if v[0] <= verts[imin][0] && v[2] <= verts[imin][2] {
			imin = i
		}
		if v[0] >= verts[imax][0] && v[2] >= verts[imax][2] {
			imax = i
		}
	}
	lo, hi := verts[imin], verts[imax]
	return rect{lo[0], lo[2], hi[0], hi[2]}, quadTurns[imin]
}
