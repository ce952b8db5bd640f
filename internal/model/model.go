// Package model groups the mesh records of one imported scene and owns
// their device buffers.
package model

import (
	"fmt"
	"math"

	"holomesh/internal/gpu"
	"holomesh/internal/mathutil"
	"holomesh/internal/mesh"
)

// Mesh is one drawable record with its attribute bindings and buffers.
// Buffer handles are zero until Upload and after Release.
type Mesh struct {
	Record         *mesh.Record
	PositionAttrib gpu.AttribLocation
	ColorAttrib    gpu.AttribLocation

	position gpu.Buffer
	color    gpu.Buffer
	normal   gpu.Buffer
	index    gpu.Buffer
}

// Uploaded reports whether the mesh has device buffers.
func (m *Mesh) Uploaded() bool {
	return m.position != 0 && m.index != 0
}

// Assembly is an ordered set of meshes sharing one pair of attribute
// locations. Nothing is drawn until MarkLoaded has been called.
type Assembly struct {
	posLoc   gpu.AttribLocation
	colorLoc gpu.AttribLocation
	meshes   []*Mesh
	loaded   bool
}

// New returns an empty, unloaded assembly with unset attribute locations.
func New() *Assembly {
	return &Assembly{posLoc: gpu.NoLocation, colorLoc: gpu.NoLocation}
}

// SetPositionAttribLocation sets the shared position binding. Meshes
// already added pick it up as well.
func (a *Assembly) SetPositionAttribLocation(loc gpu.AttribLocation) {
	a.posLoc = loc
	for _, m := range a.meshes {
		m.PositionAttrib = loc
	}
}

// SetColorAttribLocation sets the shared colour binding.
func (a *Assembly) SetColorAttribLocation(loc gpu.AttribLocation) {
	a.colorLoc = loc
	for _, m := range a.meshes {
		m.ColorAttrib = loc
	}
}

// AddMesh appends a record, binding it to the current locations.
func (a *Assembly) AddMesh(r *mesh.Record) *Mesh {
	m := &Mesh{Record: r, PositionAttrib: a.posLoc, ColorAttrib: a.colorLoc}
	a.meshes = append(a.meshes, m)
	return m
}

// MarkLoaded enables drawing. It cannot be undone.
func (a *Assembly) MarkLoaded() { a.loaded = true }

func (a *Assembly) Loaded() bool { return a.loaded }

// Meshes returns the meshes in insertion order.
func (a *Assembly) Meshes() []*Mesh { return a.meshes }

// Stats returns total vertex and triangle counts.
func (a *Assembly) Stats() (vertices, triangles int) {
	for _, m := range a.meshes {
		vertices += m.Record.VertexCount()
		triangles += m.Record.TriangleCount()
	}
	return vertices, triangles
}

// Bounds returns the box around every mesh. An empty assembly returns two
// zero vectors.
func (a *Assembly) Bounds() (lo, hi mathutil.Vec3) {
	lo = mathutil.V3(math.Inf(1), math.Inf(1), math.Inf(1))
	hi = mathutil.V3(math.Inf(-1), math.Inf(-1), math.Inf(-1))
	found := false
	for _, m := range a.meshes {
		if m.Record.VertexCount() == 0 {
			continue
		}
		mlo, mhi := m.Record.Bounds()
		for k := 0; k < 3; k++ {
			lo[k] = math.Min(lo[k], mlo[k])
			hi[k] = math.Max(hi[k], mhi[k])
		}
		found = true
	}
	if !found {
		return mathutil.Vec3{}, mathutil.Vec3{}
	}
	return lo, hi
}

// Upload creates the buffers of every mesh not yet uploaded. Empty meshes
// are skipped. On error the buffers of the failing mesh are released and
// earlier meshes stay uploaded.
func (a *Assembly) Upload(dev gpu.Device) error {
	for i, m := range a.meshes {
		if m.Uploaded() || len(m.Record.Indices) == 0 || m.Record.VertexCount() == 0 {
			continue
		}
		if err := m.upload(dev); err != nil {
			m.release(dev)
			return fmt.Errorf("model: upload mesh %d %q: %w", i, m.Record.Name, err)
		}
	}
	return nil
}

func (m *Mesh) upload(dev gpu.Device) error {
	var err error
	if m.position, err = dev.CreateVertexBuffer(m.Record.FlatPositions(), gpu.StaticDraw); err != nil {
		return fmt.Errorf("positions: %w", err)
	}
	if m.color, err = dev.CreateVertexBuffer(m.Record.FlatColors(), gpu.StaticDraw); err != nil {
		return fmt.Errorf("colours: %w", err)
	}
	if len(m.Record.Normals) > 0 {
		if m.normal, err = dev.CreateVertexBuffer(m.Record.FlatNormals(), gpu.StaticDraw); err != nil {
			return fmt.Errorf("normals: %w", err)
		}
	}
	if m.index, err = dev.CreateIndexBuffer(m.Record.Indices, gpu.StaticDraw); err != nil {
		return fmt.Errorf("indices: %w", err)
	}
	return nil
}

// Release deletes every buffer. Calling it again is a no-op.
func (a *Assembly) Release(dev gpu.Device) {
	for _, m := range a.meshes {
		m.release(dev)
	}
}

func (m *Mesh) release(dev gpu.Device) {
	for _, b := range []*gpu.Buffer{&m.position, &m.color, &m.normal, &m.index} {
		if *b != 0 {
			dev.DeleteBuffer(*b)
			*b = 0
		}
	}
}

// PreRender binds the position and colour streams of every mesh.
func (a *Assembly) PreRender(dev gpu.Device, stereo bool) {
	if !a.loaded {
		return
	}
	for _, m := range a.meshes {
		m.PreRender(dev, stereo)
	}
}

// Render draws every uploaded mesh, twice per draw call in stereo.
func (a *Assembly) Render(dev gpu.Device, stereo bool) {
	if !a.loaded {
		return
	}
	for _, m := range a.meshes {
		m.Render(dev, stereo)
	}
}

// PreRender binds the vertex streams. Both streams are 4 floats per
// vertex.
func (m *Mesh) PreRender(dev gpu.Device, stereo bool) {
	if !m.Uploaded() {
		return
	}
	dev.BindBuffer(gpu.ArrayBuffer, m.position)
	dev.EnableVertexAttribArray(m.PositionAttrib)
	dev.VertexAttribPointer(m.PositionAttrib, 4, 0, 0)
	dev.BindBuffer(gpu.ArrayBuffer, m.color)
	dev.EnableVertexAttribArray(m.ColorAttrib)
	dev.VertexAttribPointer(m.ColorAttrib, 4, 0, 0)
}

// Render rebinds the streams and issues the indexed draw.
func (m *Mesh) Render(dev gpu.Device, stereo bool) {
	if !m.Uploaded() {
		return
	}
	m.PreRender(dev, stereo)
	dev.BindBuffer(gpu.ElementArrayBuffer, m.index)
	n := len(m.Record.Indices)
	if stereo {
		dev.DrawElementsInstanced(n, 2)
	} else {
		dev.DrawElements(n)
	}
}
