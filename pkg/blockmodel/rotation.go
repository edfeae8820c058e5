package blockmodel

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Direction is one of the six cube faces.
type Direction uint8

const (
	West Direction = iota
	Down
	North
	South
	Up
	East
)

// Directions lists every face in table order.
var Directions = [...]Direction{West, Down, North, South, Up, East}

var directionNames = [...]string{"west", "down", "north", "south", "up", "east"}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return fmt.Sprintf("Direction(%d)", d)
}

// ParseDirection maps a face name ("up", "north", ...) to its Direction.
func ParseDirection(name string) (Direction, bool) {
	for i, n := range directionNames {
		if n == name {
			return Direction(i), true
		}
	}
	return 0, false
}

// rotateTable[face][x/90][y/90] is the face that ends up where face was
// after rotating x degrees about the X axis and then y degrees about Y.
var rotateTable = [6][4][4]Direction{
	West: {
		{West, North, East, South},
		{West, North, East, South},
		{West, North, East, South},
		{West, North, East, South},
	},
	Down: {
		{Down, Down, Down, Down},
		{North, East, South, West},
		{Up, Up, Up, Up},
		{South, West, North, East},
	},
	North: {
		{North, East, South, West},
		{Up, Up, Up, Up},
		{South, West, North, East},
		{Down, Down, Down, Down},
	},
	South: {
		{South, West, North, East},
		{Down, Down, Down, Down},
		{North, East, South, West},
		{Up, Up, Up, Up},
	},
	Up: {
		{Up, Up, Up, Up},
		{South, West, North, East},
		{Down, Down, Down, Down},
		{North, East, South, West},
	},
	East: {
		{East, South, West, North},
		{East, South, West, North},
		{East, South, West, North},
		{East, South, West, North},
	},
}

var inverseTable [6][4][4]Direction

func init() {
	for _, d := range Directions {
		for x := 0; x < 4; x++ {
			for y := 0; y < 4; y++ {
				inverseTable[rotateTable[d][x][y]][x][y] = d
			}
		}
	}
}

var faceAxis = [6]mgl32.Vec3{
	West:  {-1, 0, 0},
	Down:  {0, -1, 0},
	North: {0, 0, -1},
	South: {0, 0, 1},
	Up:    {0, 1, 0},
	East:  {1, 0, 0},
}

// Texture rotation, per quarter turn, that keeps a uv-locked face aligned.
var (
	uvLockX = [6]int{West: 90, East: -90}
	uvLockY = [6]int{Up: 90, Down: -90}
)

func quarter(deg int) int {
	return ((deg/90)%4 + 4) % 4
}

func normalizeDegrees(deg int) int {
	return ((deg % 360) + 360) % 360
}

// ParseRotation validates a model rotation in degrees and normalizes it
// into [0,360).
func ParseRotation(deg int) (int, error) {
	if deg%90 != 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidRotation, deg)
	}
	return normalizeDegrees(deg), nil
}

// RotateFace returns the face d becomes after rotating by (rotX, rotY).
func RotateFace(d Direction, rotX, rotY int) Direction {
	return rotateTable[d][quarter(rotX)][quarter(rotY)]
}

// InverseFace returns the face that RotateFace maps onto d.
func InverseFace(d Direction, rotX, rotY int) Direction {
	return inverseTable[d][quarter(rotX)][quarter(rotY)]
}

// Axis is the outward unit normal of d.
func Axis(d Direction) mgl32.Vec3 {
	return faceAxis[d]
}

// UVLockCorrection returns the per-quarter-turn texture correction of face d
// for rotations about X and about Y.
func UVLockCorrection(d Direction) (x, y int) {
	return uvLockX[d], uvLockY[d]
}

// RotationMatrix is the linear map taking unrotated model space to the space
// rotated by (rotX, rotY). Its columns are the rotated east, up and south
// axes.
func RotationMatrix(rotX, rotY int) mgl32.Mat3 {
	return mgl32.Mat3FromCols(
		Axis(RotateFace(East, rotX, rotY)),
		Axis(RotateFace(Up, rotX, rotY)),
		Axis(RotateFace(South, rotX, rotY)),
	)
}
