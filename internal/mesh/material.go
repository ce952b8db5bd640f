package mesh

import (
	"fmt"
	"log/slog"
	"strings"

	"holomesh/internal/scene"
)

// SampleDiffuse returns the diffuse colour of material idx on node.
// Missing materials, missing diffuse properties and non Phong/Lambert
// materials yield scene.DefaultColour.
func SampleDiffuse(node *scene.Node, idx int) scene.Colour {
	m := node.Material(idx)
	if m == nil {
		return scene.DefaultColour
	}
	switch m.Kind {
	case scene.MaterialPhong, scene.MaterialLambert:
	default:
		return scene.DefaultColour
	}
	if p, ok := m.Property("DiffuseColor"); ok {
		if c, ok := p.Colour(); ok {
			return c
		}
		return scene.DefaultColour
	}
	if m.Diffuse == (scene.Colour{}) {
		return scene.DefaultColour
	}
	return m.Diffuse
}

// TextureInfo reports the pixel size of a texture.
type TextureInfo interface {
	Dimensions(t *scene.Texture) (width, height int, err error)
}

// Field is one reported material attribute.
type Field struct {
	Key   string
	Value string
}

// MaterialReport describes one material of a node.
type MaterialReport struct {
	Index  int
	Name   string
	Kind   scene.MaterialKind
	Fields []Field
}

func (r *MaterialReport) add(key, format string, args ...any) {
	r.Fields = append(r.Fields, Field{key, fmt.Sprintf(format, args...)})
}

// DescribeMaterials walks every material of node and reports its shading
// model values. Hardware-shader binding entries are resolved to bound
// textures or typed properties. The reports are also logged at debug
// level. textures may be nil.
func DescribeMaterials(node *scene.Node, logger *slog.Logger, textures TextureInfo) []MaterialReport {
	if node == nil {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	reports := make([]MaterialReport, 0, len(node.Materials))
	for i, m := range node.Materials {
		r := MaterialReport{Index: i, Name: m.Name, Kind: m.Kind}
		switch m.Kind {
		case scene.MaterialHardwareShader:
			describeShader(&r, m, textures)
		case scene.MaterialPhong:
			r.add("ambient", "%s", m.Ambient.Hex())
			r.add("diffuse", "%s", m.Diffuse.Hex())
			r.add("specular", "%s", m.Specular.Hex())
			r.add("emissive", "%s", m.Emissive.Hex())
			r.add("opacity", "%g", m.Opacity)
			r.add("shininess", "%g", m.Shininess)
			r.add("reflectivity", "%g", m.Reflectivity)
		case scene.MaterialLambert:
			r.add("ambient", "%s", m.Ambient.Hex())
			r.add("diffuse", "%s", m.Diffuse.Hex())
			r.add("emissive", "%s", m.Emissive.Hex())
			r.add("opacity", "%g", m.Opacity)
		default:
			r.add("class", "unknown material class %q", m.ShadingModel)
		}
		describeTextures(&r, m, textures)

		attrs := []any{"node", node.Name, "material", m.Name, "kind", m.Kind.String()}
		for _, f := range r.Fields {
			attrs = append(attrs, f.Key, f.Value)
		}
		logger.Debug("mesh: material", attrs...)
		reports = append(reports, r)
	}
	return reports
}

func describeShader(r *MaterialReport, m *scene.Material, textures TextureInfo) {
	im := m.Implementation
	if im == nil {
		r.add("shader", "no implementation")
		return
	}
	r.add("language", "%s", im.Language)
	if im.URL != "" {
		r.add("url", "%s", im.URL)
	}
	if im.Technique != "" {
		r.add("technique", "%s", im.Technique)
	}
	for _, e := range im.Entries {
		key := "entry " + e.Destination
		if e.Kind == scene.EntryConstant {
			if p, ok := im.Constant(e.Source); ok {
				r.add(key, "%s", formatProperty(p))
				continue
			}
		}
		if tex := m.TexturesFor(e.Source); len(tex) > 0 {
			names := make([]string, 0, len(tex))
			for _, t := range tex {
				names = append(names, textureLabel(t, textures))
			}
			r.add(key, "%s", strings.Join(names, ", "))
			continue
		}
		if p, ok := m.Property(e.Source); ok {
			r.add(key, "%s", formatProperty(p))
			continue
		}
		r.add(key, "unresolved %s", e.Source)
	}
}

func describeTextures(r *MaterialReport, m *scene.Material, textures TextureInfo) {
	for _, prop := range []string{"DiffuseColor", "SpecularColor", "EmissiveColor", "AmbientColor", "NormalMap", "Bump", "TransparentColor"} {
		for _, t := range m.TexturesFor(prop) {
			r.add("texture "+prop, "%s", textureLabel(t, textures))
		}
	}
}

func textureLabel(t *scene.Texture, textures TextureInfo) string {
	label := fmt.Sprintf("%s (%s) %s", t.Name, t.Kind, t.FileName)
	if textures == nil || t.Kind != scene.TextureFile {
		return label
	}
	w, h, err := textures.Dimensions(t)
	if err != nil {
		return label + " unresolved"
	}
	return fmt.Sprintf("%s %dx%d", label, w, h)
}

func formatProperty(p scene.Property) string {
	switch p.Type {
	case scene.PropBool:
		return fmt.Sprintf("bool %t", p.Bool())
	case scene.PropInt, scene.PropEnum:
		return fmt.Sprintf("int %d", int64(p.Scalar(0)))
	case scene.PropFloat, scene.PropDouble:
		return fmt.Sprintf("%s %g", strings.ToLower(p.Type.String()), p.Scalar(0))
	case scene.PropString:
		return fmt.Sprintf("string %q", p.Text)
	case scene.PropVector2, scene.PropVector3, scene.PropVector4, scene.PropColor3, scene.PropColor4:
		return fmt.Sprintf("%s %v", strings.ToLower(p.Type.String()), p.Values)
	case scene.PropMatrix4x4:
		rows := make([]string, 0, 4)
		for i := 0; i+4 <= len(p.Values) && i < 16; i += 4 {
			rows = append(rows, fmt.Sprint(p.Values[i:i+4]))
		}
		return "matrix4x4 " + strings.Join(rows, " ")
	}
	return fmt.Sprintf("unknown %v", p.Values)
}
