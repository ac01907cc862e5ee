package pointcloud

import "github.com/beetlebugorg/pointcloud/internal/geom"

// Isometry3 is a rigid transform: a rotation matrix R (orthonormal;
// Rotation[i] is row i of R, so the images of the x/y/z axes are R's
// columns) plus a translation, applied as R*p + translation.
type Isometry3 struct {
	Rotation    [3]geom.Vec3
	Translation geom.Vec3
}

// Identity returns the no-op transform.
func Identity() Isometry3 {
	return Isometry3{
		Rotation: [3]geom.Vec3{
			{X: 1, Y: 0, Z: 0},
			{X: 0, Y: 1, Z: 0},
			{X: 0, Y: 0, Z: 1},
		},
	}
}

// Transform applies the isometry to p.
func (t Isometry3) Transform(p geom.Vec3) geom.Vec3 {
	return geom.Vec3{
		X: t.Rotation[0].Dot(p) + t.Translation.X,
		Y: t.Rotation[1].Dot(p) + t.Translation.Y,
		Z: t.Rotation[2].Dot(p) + t.Translation.Z,
	}
}

// Inverse returns the inverse transform: for a rotation matrix R
// (orthonormal, so R^-1 = R^T) and translation t, the inverse of
// p -> Rp + t is q -> R^T(q - t).
func (t Isometry3) Inverse() Isometry3 {
	rT := [3]geom.Vec3{
		{X: t.Rotation[0].X, Y: t.Rotation[1].X, Z: t.Rotation[2].X},
		{X: t.Rotation[0].Y, Y: t.Rotation[1].Y, Z: t.Rotation[2].Y},
		{X: t.Rotation[0].Z, Y: t.Rotation[1].Z, Z: t.Rotation[2].Z},
	}
	neg := geom.Vec3{X: -t.Translation.X, Y: -t.Translation.Y, Z: -t.Translation.Z}
	translated := geom.Vec3{
		X: rT[0].Dot(neg),
		Y: rT[1].Dot(neg),
		Z: rT[2].Dot(neg),
	}
	return Isometry3{Rotation: rT, Translation: translated}
}
