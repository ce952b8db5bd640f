// Package importer loads a scene and turns every mesh in it into a
// model.Assembly ready for upload.
package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"holomesh/internal/fbx"
	"holomesh/internal/gpu"
	"holomesh/internal/mesh"
	"holomesh/internal/model"
	"holomesh/internal/scene"
)

// Options configures an Importer.
type Options struct {
	Logger *slog.Logger
	// Strict aborts the whole load on the first mesh that fails to
	// build. By default the mesh is logged and skipped.
	Strict bool
	// KeepPolygons skips triangulation. Meshes that are not already
	// triangles then fail to build and are skipped, or abort the load
	// under Strict.
	KeepPolygons bool
	// BakeTransforms applies each node's global transform to its
	// vertices.
	BakeTransforms bool
	// Textures resolves texture sizes for material diagnostics. May be
	// nil.
	Textures mesh.TextureInfo
}

// MeshResult records the outcome of one geometry.
type MeshResult struct {
	Node      string
	Geometry  string
	Vertices  int
	Triangles int
	Err       error
}

// Report summarises the last load.
type Report struct {
	Source    string
	Meshes    []MeshResult
	Materials []mesh.MaterialReport
}

// Built returns the number of meshes added to the model.
func (r *Report) Built() int {
	n := 0
	for _, m := range r.Meshes {
		if m.Err == nil {
			n++
		}
	}
	return n
}

// Skipped returns the meshes that failed to build.
func (r *Report) Skipped() []MeshResult {
	var out []MeshResult
	for _, m := range r.Meshes {
		if m.Err != nil {
			out = append(out, m)
		}
	}
	return out
}

// Importer converts scenes into models. It is not safe for concurrent use.
type Importer struct {
	opts     Options
	logger   *slog.Logger
	position gpu.AttribLocation
	color    gpu.AttribLocation
	report   *Report
}

// New returns an importer with unset shader attribute locations.
func New(opts Options) *Importer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		opts:     opts,
		logger:   logger,
		position: gpu.NoLocation,
		color:    gpu.NoLocation,
	}
}

// SetShaderAttributes sets the attribute locations every loaded model
// binds its position and colour streams to.
func (im *Importer) SetShaderAttributes(position, color gpu.AttribLocation) {
	im.position = position
	im.color = color
}

// Report returns the report of the last load, or nil.
func (im *Importer) Report() *Report { return im.report }

// LoadModelFromFile imports an FBX file and builds its meshes. Open and
// decode failures wrap fbx.ErrImportFailure.
func (im *Importer) LoadModelFromFile(path string) (*model.Assembly, error) {
	sc, err := fbx.Import(path, fbx.ImportOptions{Logger: im.logger})
	if err != nil {
		im.report = &Report{Source: path}
		return nil, err
	}
	return im.LoadScene(sc)
}

// LoadScene builds every mesh of an already constructed scene.
func (im *Importer) LoadScene(sc *scene.Scene) (*model.Assembly, error) {
	if sc == nil || sc.Root == nil {
		return nil, fmt.Errorf("importer: %w", fbx.ErrImportFailure)
	}
	rep := &Report{Source: sc.Source}
	im.report = rep
	im.printTree(sc)

	m := model.New()
	m.SetPositionAttribLocation(im.position)
	m.SetColorAttribLocation(im.color)

	var failed error
	scene.Traverse(sc.Root, func(n *scene.Node, g *scene.Geometry) {
		if failed != nil {
			return
		}
		res := MeshResult{Node: n.Name, Geometry: g.Name}
		if !im.opts.KeepPolygons && !g.IsTriangleMesh() {
			g = scene.Triangulate(g)
		}
		rep.Materials = append(rep.Materials, mesh.DescribeMaterials(n, im.logger, im.opts.Textures)...)

		opts := mesh.BuildOptions{Logger: im.logger}
		if im.opts.BakeTransforms {
			world := n.GlobalMatrix()
			if !world.IsIdentity() {
				opts.BakeTransform = &world
			}
		}
		r, err := mesh.Build(g, opts)
		if err != nil {
			res.Err = err
			rep.Meshes = append(rep.Meshes, res)
			if im.opts.Strict {
				failed = fmt.Errorf("importer: node %q: %w", n.Name, err)
				return
			}
			im.logger.Warn("importer: skipping mesh", "node", n.Name, "geometry", g.Name, "err", err)
			return
		}
		res.Vertices, res.Triangles = r.VertexCount(), r.TriangleCount()
		rep.Meshes = append(rep.Meshes, res)
		m.AddMesh(r)
	})
	if failed != nil {
		return nil, failed
	}

	m.MarkLoaded()
	v, t := m.Stats()
	im.logger.Info("importer: model loaded",
		"source", sc.Source,
		"meshes", len(m.Meshes()),
		"skipped", len(rep.Skipped()),
		"vertices", v,
		"triangles", t)
	return m, nil
}

func (im *Importer) printTree(sc *scene.Scene) {
	if !im.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	var buf bytes.Buffer
	if err := scene.PrintChildren(&buf, sc.Root); err != nil {
		im.logger.Debug("importer: print scene", "err", err)
		return
	}
	im.logger.Debug("importer: scene", "source", sc.Source, "tree", buf.String())
}

// IsMeshError reports whether err came from building a single mesh rather
// than from reading the scene.
func IsMeshError(err error) bool {
	for _, target := range []error{
		mesh.ErrUnsupportedGeometry,
		mesh.ErrUnsupportedReferenceMode,
		mesh.ErrUnsupportedMappingMode,
		mesh.ErrNormalIndex,
		mesh.ErrIndexOverflow,
		mesh.ErrIndexOutOfRange,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
