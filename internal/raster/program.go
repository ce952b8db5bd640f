package raster

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"holomesh/internal/gpu"
)

// Names the fixed vertex stage binds by role.
const (
	PositionAttrib          = "aPosition"
	ColorAttrib             = "aColor"
	RenderTargetIndexAttrib = "aRenderTargetArrayIndex"

	ModelUniform          = "uModelMatrix"
	ViewUniform           = "uViewMatrix"
	ProjUniform           = "uProjMatrix"
	StereoViewProjUniform = "uHolographicViewProjectionMatrix"
)

var (
	declRE = regexp.MustCompile(`(?m)^\s*(?:layout\s*\([^)]*\)\s*)?(attribute|in|uniform)\s+(?:(?:lowp|mediump|highp)\s+)?(\w+)\s+(\w+)\s*(?:\[\s*(\d+)\s*\])?\s*;`)
	mainRE = regexp.MustCompile(`\bvoid\s+main\s*\(\s*(?:void)?\s*\)`)
)

type declaration struct {
	kind  string
	typ   string
	name  string
	count int
}

func scanDeclarations(src string) []declaration {
	var out []declaration
	for _, m := range declRE.FindAllStringSubmatch(src, -1) {
		d := declaration{kind: m[1], typ: m[2], name: m[3], count: 1}
		if m[4] != "" {
			d.count, _ = strconv.Atoi(m[4])
		}
		out = append(out, d)
	}
	return out
}

type program struct {
	attribs  map[string]gpu.AttribLocation
	uniforms map[string]gpu.UniformLocation
	sizes    map[gpu.UniformLocation]int
	values   map[gpu.UniformLocation]mgl32.Mat4
	stereo   bool
}

// link scans the GLSL declarations of both stages. Attributes come from the
// vertex stage in declaration order; uniforms from both stages, arrays
// taking one location per element.
func link(src gpu.ProgramSource) (*program, error) {
	vs, fs := string(src.Vertex), string(src.Fragment)
	if !mainRE.MatchString(vs) {
		return nil, fmt.Errorf("%w: vertex stage has no main", gpu.ErrLinkFailed)
	}
	if !mainRE.MatchString(fs) {
		return nil, fmt.Errorf("%w: fragment stage has no main", gpu.ErrLinkFailed)
	}

	p := &program{
		attribs:  make(map[string]gpu.AttribLocation),
		uniforms: make(map[string]gpu.UniformLocation),
		sizes:    make(map[gpu.UniformLocation]int),
		values:   make(map[gpu.UniformLocation]mgl32.Mat4),
	}
	next := gpu.UniformLocation(0)
	addUniforms := func(decls []declaration) error {
		for _, d := range decls {
			if d.kind != "uniform" {
				continue
			}
			if _, ok := p.uniforms[d.name]; ok {
				continue
			}
			if d.typ != "mat4" {
				return fmt.Errorf("%w: uniform %s has unsupported type %s", gpu.ErrLinkFailed, d.name, d.typ)
			}
			p.uniforms[d.name] = next
			p.sizes[next] = d.count
			next += gpu.UniformLocation(d.count)
		}
		return nil
	}

	vdecls := scanDeclarations(vs)
	for _, d := range vdecls {
		if d.kind == "attribute" || d.kind == "in" {
			p.attribs[d.name] = gpu.AttribLocation(len(p.attribs))
		}
	}
	if err := addUniforms(vdecls); err != nil {
		return nil, err
	}
	if err := addUniforms(scanDeclarations(fs)); err != nil {
		return nil, err
	}
	if _, ok := p.attribs[PositionAttrib]; !ok {
		return nil, fmt.Errorf("%w: vertex stage does not declare %s", gpu.ErrLinkFailed, PositionAttrib)
	}
	if loc, ok := p.uniforms[StereoViewProjUniform]; ok && p.sizes[loc] >= 2 {
		p.stereo = true
	}
	if p.stereo && !strings.Contains(vs, RenderTargetIndexAttrib) {
		return nil, fmt.Errorf("%w: stereo program without %s", gpu.ErrLinkFailed, RenderTargetIndexAttrib)
	}
	return p, nil
}

// matrix returns element i of a uniform, identity when unset or missing.
func (p *program) matrix(name string, i int) mgl32.Mat4 {
	loc, ok := p.uniforms[name]
	if !ok {
		return mgl32.Ident4()
	}
	if m, ok := p.values[loc+gpu.UniformLocation(i)]; ok {
		return m
	}
	return mgl32.Ident4()
}
