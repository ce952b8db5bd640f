// Package camera builds the fixed view, projection and model matrices the
// frame renderer feeds to its shaders.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"holomesh/internal/mathutil"
)

const (
	// DefaultFOV is the vertical field of view in degrees.
	DefaultFOV = 45.0
	Near       = 0.1
	Far        = 100.0
	// DefaultIPD is the distance between the eyes in metres.
	DefaultIPD = 0.064
	// EyeHeight raises the camera above the model so it is seen from
	// slightly above.
	EyeHeight = 2.0
)

// ModelPosition is where the renderer places the model by default.
var ModelPosition = mgl32.Vec3{0, 0, -10}

var up = mgl32.Vec3{0, 1, 0}

// SimpleView looks from just above the origin at ModelPosition.
func SimpleView() mgl32.Mat4 {
	return eyeView(0)
}

func eyeView(offset float32) mgl32.Mat4 {
	eye := mgl32.Vec3{offset, EyeHeight, 0}
	target := ModelPosition.Add(mgl32.Vec3{offset, 0, 0})
	return mgl32.LookAtV(eye, target, up)
}

// SimpleProjection returns a perspective projection for the given
// width/height ratio. Non-positive ratios are treated as square.
func SimpleProjection(aspect float32) mgl32.Mat4 {
	if aspect <= 0 || math.IsNaN(float64(aspect)) {
		aspect = 1
	}
	return mgl32.Perspective(mgl32.DegToRad(DefaultFOV), aspect, Near, Far)
}

// StereoViewProjection returns left and right eye view-projections with
// parallel view axes separated by ipd.
func StereoViewProjection(aspect, ipd float32) [2]mgl32.Mat4 {
	proj := SimpleProjection(aspect)
	half := ipd / 2
	return [2]mgl32.Mat4{
		proj.Mul4(eyeView(-half)),
		proj.Mul4(eyeView(half)),
	}
}

// SimpleModel places a model at position after spinning it about Y by
// angle radians.
func SimpleModel(angle float32, position mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(position[0], position[1], position[2]).Mul4(mgl32.HomogRotate3DY(angle))
}

// Fit centres the box lo..hi on the origin and scales it uniformly so its
// half diagonal equals radius. A degenerate box is only centred.
func Fit(lo, hi mathutil.Vec3, radius float32) mgl32.Mat4 {
	c := lo.Add(hi).Scale(0.5).Float32()
	centre := mgl32.Translate3D(-c[0], -c[1], -c[2])
	half := hi.Sub(lo).Len() / 2
	if half < 1e-9 || radius <= 0 {
		return centre
	}
	s := radius / float32(half)
	return mgl32.Scale3D(s, s, s).Mul4(centre)
}

// FillRadius returns the radius that makes a fitted model at distance
// cover fill of the vertical half field of view.
func FillRadius(distance, fill float32) float32 {
	halfFOV := mathutil.Deg2Rad(DefaultFOV / 2)
	return fill * distance * float32(math.Tan(halfFOV))
}
