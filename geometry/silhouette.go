package geometry

import "gonum.org/v1/gonum/spatial/r2"

// DefaultOutline traces the figure clockwise from the top of the head:
// head, shoulder, outstretched arm to the fingertip, back along the underside
// of the arm, down the torso, the leg to the foot and up the back.
var DefaultOutline = []r2.Vec{
	{X: 352, Y: 172}, {X: 388, Y: 160}, {X: 418, Y: 196}, {X: 428, Y: 216},
	{X: 470, Y: 208}, {X: 530, Y: 196}, {X: 540, Y: 206}, {X: 534, Y: 216},
	{X: 474, Y: 228}, {X: 432, Y: 244}, {X: 412, Y: 246}, {X: 404, Y: 230},
	{X: 398, Y: 262}, {X: 396, Y: 300}, {X: 402, Y: 330}, {X: 414, Y: 352},
	{X: 428, Y: 400}, {X: 440, Y: 440}, {X: 452, Y: 468}, {X: 430, Y: 476},
	{X: 414, Y: 446}, {X: 396, Y: 404}, {X: 378, Y: 372}, {X: 360, Y: 346},
	{X: 350, Y: 300}, {X: 348, Y: 240},
}

// DefaultForceChain runs inside the figure from the foot up through the torso
// and out along the arm to the fingertip.
var DefaultForceChain = []r2.Vec{
	{X: 440, Y: 455}, {X: 418, Y: 400}, {X: 400, Y: 350}, {X: 380, Y: 300},
	{X: 378, Y: 250}, {X: 390, Y: 215}, {X: 425, Y: 225}, {X: 480, Y: 214},
	{X: 530, Y: 205},
}

// DefaultBody builds the standard figure.
func DefaultBody() *Body {
	return NewPolygonBody(DefaultOutline, DefaultForceChain)
}
