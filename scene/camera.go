package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// CameraKind selects the projection. The zero value is not a valid camera
// and is rejected by the renderer.
type CameraKind int

const (
	CameraUnknown CameraKind = iota
	Perspective
	Orthographic
)

func (k CameraKind) String() string {
	switch k {
	case Perspective:
		return "Perspective"
	case Orthographic:
		return "Orthographic"
	}
	return "Unknown"
}

// Camera represents a view camera
type Camera struct {
	Kind     CameraKind
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Layers   Layers

	// Perspective parameters. FOV is the vertical field of view in radians.
	FOV         float32
	AspectRatio float32
	// Orthographic extents in view space.
	Left, Right, Top, Bottom float32

	NearPlane float32
	FarPlane  float32
	Zoom      float32

	// Cached matrices
	viewMatrix       mgl32.Mat4
	projectionMatrix mgl32.Mat4
	worldMatrix      mgl32.Mat4
	dirty            bool
}

// NewCamera creates a perspective camera.
func NewCamera(fov, aspectRatio, nearPlane, farPlane float32) *Camera {
	return &Camera{
		Kind:        Perspective,
		Rotation:    mgl32.QuatIdent(),
		Layers:      DefaultLayers,
		FOV:         fov,
		AspectRatio: aspectRatio,
		NearPlane:   nearPlane,
		FarPlane:    farPlane,
		Zoom:        1,
		dirty:       true,
	}
}

// NewOrthographicCamera creates an orthographic camera.
func NewOrthographicCamera(left, right, top, bottom, nearPlane, farPlane float32) *Camera {
	return &Camera{
		Kind:      Orthographic,
		Rotation:  mgl32.QuatIdent(),
		Layers:    DefaultLayers,
		Left:      left,
		Right:     right,
		Top:       top,
		Bottom:    bottom,
		NearPlane: nearPlane,
		FarPlane:  farPlane,
		Zoom:      1,
		dirty:     true,
	}
}

func (c *Camera) UpdateAspectRatio(width, height float32) {
	if height > 0 {
		c.AspectRatio = width / height
		c.dirty = true
	}
}

func (c *Camera) SetPosition(pos mgl32.Vec3) {
	c.Position = pos
	c.dirty = true
}

func (c *Camera) SetRotation(rot mgl32.Quat) {
	c.Rotation = rot
	c.dirty = true
}

func (c *Camera) Translate(delta mgl32.Vec3) {
	c.Position = c.Position.Add(delta)
	c.dirty = true
}

func (c *Camera) Rotate(axis mgl32.Vec3, angle float32) {
	rotation := mgl32.QuatRotate(angle, axis.Normalize())
	c.Rotation = c.Rotation.Mul(rotation).Normalize()
	c.dirty = true
}

// LookAt orients the camera toward target.
func (c *Camera) LookAt(target, up mgl32.Vec3) {
	if target.Sub(c.Position).LenSqr() == 0 {
		return
	}
	view := mgl32.LookAtV(c.Position, target, up)
	c.Rotation = mgl32.Mat4ToQuat(view.Inv()).Normalize()
	c.dirty = true
}

// MarkDirty forces the matrices to be rebuilt, for direct field edits.
func (c *Camera) MarkDirty() { c.dirty = true }

// UpdateMatrices rebuilds the cached matrices if any parameter changed.
func (c *Camera) UpdateMatrices() {
	if c.dirty {
		c.updateMatrices()
	}
}

func (c *Camera) GetViewMatrix() mgl32.Mat4 {
	c.UpdateMatrices()
	return c.viewMatrix
}

func (c *Camera) GetProjectionMatrix() mgl32.Mat4 {
	c.UpdateMatrices()
	return c.projectionMatrix
}

func (c *Camera) GetViewProjectionMatrix() mgl32.Mat4 {
	c.UpdateMatrices()
	return c.projectionMatrix.Mul4(c.viewMatrix)
}

// WorldMatrix is the camera-to-world transform.
func (c *Camera) WorldMatrix() mgl32.Mat4 {
	c.UpdateMatrices()
	return c.worldMatrix
}

func (c *Camera) GetForward() mgl32.Vec3 {
	return c.Rotation.Rotate(mgl32.Vec3{0, 0, -1})
}

func (c *Camera) GetRight() mgl32.Vec3 {
	return c.Rotation.Rotate(mgl32.Vec3{1, 0, 0})
}

func (c *Camera) GetUp() mgl32.Vec3 {
	return c.Rotation.Rotate(mgl32.Vec3{0, 1, 0})
}

func (c *Camera) updateMatrices() {
	translation := mgl32.Translate3D(c.Position.X(), c.Position.Y(), c.Position.Z())
	c.worldMatrix = translation.Mul4(c.Rotation.Normalize().Mat4())
	c.viewMatrix = c.worldMatrix.Inv()

	zoom := c.Zoom
	if zoom == 0 {
		zoom = 1
	}
	switch c.Kind {
	case Orthographic:
		cx, cy := (c.Left+c.Right)/2, (c.Top+c.Bottom)/2
		hw, hh := (c.Right-c.Left)/(2*zoom), (c.Top-c.Bottom)/(2*zoom)
		c.projectionMatrix = mgl32.Ortho(cx-hw, cx+hw, cy-hh, cy+hh, c.NearPlane, c.FarPlane)
	default:
		fov := 2 * math32.Atan(math32.Tan(c.FOV/2)/zoom)
		c.projectionMatrix = mgl32.Perspective(fov, c.AspectRatio, c.NearPlane, c.FarPlane)
	}

	c.dirty = false
}

// OrbitCamera is a specialized camera for orbiting around a target
type OrbitCamera struct {
	Camera
	Target   mgl32.Vec3
	Distance float32
	Yaw      float32
	Pitch    float32
}

func NewOrbitCamera(target mgl32.Vec3, distance, fov, aspectRatio float32) *OrbitCamera {
	c := &OrbitCamera{
		Target:   target,
		Distance: distance,
		Pitch:    0.3,
	}
	c.Camera = *NewCamera(fov, aspectRatio, 0.1, 1000.0)
	c.UpdatePosition()
	return c
}

func (c *OrbitCamera) UpdatePosition() {
	c.Pitch = mgl32.Clamp(c.Pitch, -1.5, 1.5)

	cosPitch, sinPitch := math32.Cos(c.Pitch), math32.Sin(c.Pitch)
	cosYaw, sinYaw := math32.Cos(c.Yaw), math32.Sin(c.Yaw)

	offset := mgl32.Vec3{
		c.Distance * cosPitch * sinYaw,
		c.Distance * sinPitch,
		c.Distance * cosPitch * cosYaw,
	}

	c.Position = c.Target.Add(offset)
	c.LookAt(c.Target, mgl32.Vec3{0, 1, 0})
}

func (c *OrbitCamera) Orbit(deltaYaw, deltaPitch float32) {
	c.Yaw += deltaYaw
	c.Pitch += deltaPitch
	c.UpdatePosition()
}

func (c *OrbitCamera) ZoomBy(delta float32) {
	c.Distance = math32.Max(c.Distance+delta, 0.1)
	c.UpdatePosition()
}
