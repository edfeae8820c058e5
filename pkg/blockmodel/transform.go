package blockmodel

import "github.com/go-gl/mathgl/mgl32"

// OrientedFace is one element face after the variant's rotation has been
// applied.
type OrientedFace struct {
	Vertices [4]mgl32.Vec3
	Face     Face
}

// Height is the Y coordinate of the face's first vertex.
func (f OrientedFace) Height() float32 {
	return f.Vertices[0][1]
}

var blockCenter = mgl32.Vec3{8, 8, 8}

// Orient returns the faces of m that are visible on target once the applied
// model's rotation is taken into account. m is only read; every returned
// face and vertex is a copy.
func Orient(m *Model, am AppliedModel, target Direction) []OrientedFace {
	original := InverseFace(target, am.X, am.Y)
	rot := RotationMatrix(am.X, am.Y)
	qx, qy := quarter(am.X), quarter(am.Y)
	cx, cy := UVLockCorrection(target)

	var out []OrientedFace
	for _, e := range m.Elements {
		face, ok := e.Face(original)
		if !ok {
			continue
		}
		face = face.clone()

		verts := e.FaceVertices(original)
		if qx != 0 || qy != 0 {
			for i, v := range verts {
				verts[i] = rot.Mul3x1(v.Sub(blockCenter)).Add(blockCenter)
			}
		}

		if cull, ok := ParseDirection(face.CullFace); ok {
			face.CullFace = RotateFace(cull, am.X, am.Y).String()
		}
		if am.UVLock {
			face.Rotation = normalizeDegrees(face.Rotation - qx*cx - qy*cy)
		}

		out = append(out, OrientedFace{Vertices: verts, Face: face})
	}
	return out
}
