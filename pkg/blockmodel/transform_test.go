package blockmodel

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/go-cmp/cmp"
)

func slabModel() *Model {
	return &Model{
		Elements: []Element{{
			From: [3]float32{0, 0, 0},
			To:   [3]float32{16, 8, 16},
			Faces: map[string]Face{
				"up":    {UV: DefaultUV, Texture: "block/top", CullFace: "up"},
				"north": {UV: [4]float32{0, 8, 16, 16}, Texture: "block/side", CullFace: "north"},
				"down":  {UV: DefaultUV, Texture: "block/bottom"},
			},
		}},
	}
}

func TestOrientIdentity(t *testing.T) {
	m := slabModel()
	for _, target := range Directions {
		faces := Orient(m, AppliedModel{Model: "x"}, target)
		el := m.Elements[0]
		face, ok := el.Face(target)
		if !ok {
			if len(faces) != 0 {
				t.Errorf("%s: expected no faces, got %d", target, len(faces))
			}
			continue
		}
		if len(faces) != 1 {
			t.Fatalf("%s: expected 1 face, got %d", target, len(faces))
		}
		if faces[0].Vertices != el.FaceVertices(target) {
			t.Errorf("%s: identity rotation moved vertices: %v", target, faces[0].Vertices)
		}
		if diff := cmp.Diff(face, faces[0].Face); diff != "" {
			t.Errorf("%s: identity rotation changed the face (-want +got):\n%s", target, diff)
		}
	}
}

func TestOrientUpFaceVertices(t *testing.T) {
	el := slabModel().Elements[0]
	want := [4]mgl32.Vec3{{0, 8, 16}, {16, 8, 16}, {0, 8, 0}, {16, 8, 0}}
	if got := el.FaceVertices(Up); got != want {
		t.Errorf("FaceVertices(up) = %v, want %v", got, want)
	}
}

func TestOrientAboutX(t *testing.T) {
	// x=90 brings the north face to the top.
	m := slabModel()
	faces := Orient(m, AppliedModel{Model: "x", X: 90}, Up)
	if len(faces) != 1 {
		t.Fatalf("expected 1 face, got %d", len(faces))
	}
	f := faces[0]
	if f.Face.Texture != "block/side" {
		t.Errorf("expected the north face on top, got %s", f.Face.Texture)
	}
	if f.Face.CullFace != "up" {
		t.Errorf("expected cullface north to become up, got %s", f.Face.CullFace)
	}
	for _, v := range f.Vertices {
		if v[1] != 16 {
			t.Errorf("expected rotated north face at y=16, got %v", v)
		}
	}
}

func TestOrientAboutY(t *testing.T) {
	m := &Model{Elements: []Element{{
		From:  [3]float32{0, 0, 0},
		To:    [3]float32{8, 16, 4},
		Faces: map[string]Face{"up": {UV: DefaultUV, Texture: "t", CullFace: "north"}},
	}}}
	faces := Orient(m, AppliedModel{Model: "x", Y: 90}, Up)
	if len(faces) != 1 {
		t.Fatalf("expected 1 face, got %d", len(faces))
	}
	// A quarter turn about Y sends +X to +Z; the box x:[0,8] z:[0,4] lands
	// on x:[12,16] z:[0,8].
	var minX, maxX, minZ, maxZ float32 = 99, -99, 99, -99
	for _, v := range faces[0].Vertices {
		minX, maxX = min(minX, v[0]), max(maxX, v[0])
		minZ, maxZ = min(minZ, v[2]), max(maxZ, v[2])
	}
	if minX != 12 || maxX != 16 || minZ != 0 || maxZ != 8 {
		t.Errorf("rotated footprint x:[%v,%v] z:[%v,%v]", minX, maxX, minZ, maxZ)
	}
	if faces[0].Face.CullFace != "east" {
		t.Errorf("expected cullface north to become east, got %s", faces[0].Face.CullFace)
	}
	if faces[0].Face.Rotation != 0 {
		t.Errorf("rotation changed without uvlock: %d", faces[0].Face.Rotation)
	}
}

func TestOrientUVLock(t *testing.T) {
	m := slabModel()
	tests := []struct {
		x, y int
		want int
	}{
		{0, 0, 0},
		{0, 90, 270},
		{0, 180, 180},
		{0, 270, 90},
		{180, 90, 270},
	}
	for _, tt := range tests {
		faces := Orient(m, AppliedModel{Model: "x", X: tt.x, Y: tt.y, UVLock: true}, Up)
		if len(faces) != 1 {
			t.Fatalf("(%d,%d): expected 1 face, got %d", tt.x, tt.y, len(faces))
		}
		if got := faces[0].Face.Rotation; got != tt.want {
			t.Errorf("(%d,%d): uvlock rotation = %d, want %d", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestOrientDoesNotMutateModel(t *testing.T) {
	m := slabModel()
	for name, face := range m.Elements[0].Faces {
		tint := 1
		face.TintIndex = &tint
		m.Elements[0].Faces[name] = face
	}
	before := m.Clone()

	// x=180 turns the bottom face up.
	faces := Orient(m, AppliedModel{Model: "x", X: 180, Y: 270, UVLock: true}, Up)
	if len(faces) != 1 {
		t.Fatalf("expected 1 face, got %d", len(faces))
	}
	if faces[0].Face.Texture != "block/bottom" {
		t.Errorf("expected the down face on top, got %s", faces[0].Face.Texture)
	}
	if faces[0].Face.TintIndex == nil {
		t.Fatal("oriented face lost its tint index")
	}
	faces[0].Face.Texture = "changed"
	*faces[0].Face.TintIndex = 9

	if diff := cmp.Diff(before, m); diff != "" {
		t.Errorf("Orient mutated the model (-before +after):\n%s", diff)
	}
}
