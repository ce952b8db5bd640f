package scene

import "strings"

// MaterialKind is the active shading-model variant of a material.
type MaterialKind int

const (
	MaterialUnknown MaterialKind = iota
	MaterialLambert
	MaterialPhong
	MaterialHardwareShader
)

func (k MaterialKind) String() string {
	switch k {
	case MaterialLambert:
		return "Lambert"
	case MaterialPhong:
		return "Phong"
	case MaterialHardwareShader:
		return "HardwareShader"
	default:
		return "Unknown"
	}
}

// KindFromShadingModel maps an FBX ShadingModel string to a kind.
func KindFromShadingModel(s string) MaterialKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "phong":
		return MaterialPhong
	case "lambert":
		return MaterialLambert
	default:
		return MaterialUnknown
	}
}

// PropertyType is the data type of a typed material property.
type PropertyType int

const (
	PropUnknown PropertyType = iota
	PropBool
	PropInt
	PropEnum
	PropFloat
	PropDouble
	PropString
	PropVector2
	PropVector3
	PropColor3
	PropVector4
	PropColor4
	PropMatrix4x4
)

func (p PropertyType) String() string {
	switch p {
	case PropBool:
		return "Bool"
	case PropInt:
		return "Int"
	case PropEnum:
		return "Enum"
	case PropFloat:
		return "Float"
	case PropDouble:
		return "Double"
	case PropString:
		return "String"
	case PropVector2:
		return "Vector2"
	case PropVector3:
		return "Vector3"
	case PropColor3:
		return "Color3"
	case PropVector4:
		return "Vector4"
	case PropColor4:
		return "Color4"
	case PropMatrix4x4:
		return "Matrix4x4"
	default:
		return "Unknown"
	}
}

// Property is a named typed value. Numeric payloads live in Values
// (1, 2, 3, 4 or 16 entries), strings in Text.
type Property struct {
	Name   string
	Type   PropertyType
	Values []float64
	Text   string
}

// Bool reports a boolean property value.
func (p Property) Bool() bool {
	return len(p.Values) > 0 && p.Values[0] != 0
}

// Scalar returns the first numeric component, or def.
func (p Property) Scalar(def float64) float64 {
	if len(p.Values) == 0 {
		return def
	}
	return p.Values[0]
}

// IsColour reports whether the property carries three or four channels.
func (p Property) IsColour() bool {
	switch p.Type {
	case PropVector3, PropColor3, PropVector4, PropColor4:
		return len(p.Values) >= 3
	}
	return false
}

// Colour converts a colour-typed property; alpha comes from a fourth
// channel when present and is 1 otherwise.
func (p Property) Colour() (Colour, bool) {
	if !p.IsColour() {
		return DefaultColour, false
	}
	c := RGB(p.Values[0], p.Values[1], p.Values[2])
	if len(p.Values) >= 4 {
		c.A = p.Values[3]
	}
	return c, true
}

// TextureKind distinguishes the texture classes a property can bind.
type TextureKind int

const (
	TextureFile TextureKind = iota
	TextureLayered
	TextureProcedural
)

func (k TextureKind) String() string {
	switch k {
	case TextureLayered:
		return "Layered Texture"
	case TextureProcedural:
		return "Procedural Texture"
	default:
		return "File Texture"
	}
}

// Texture is a texture object connected to a material property.
type Texture struct {
	Name             string
	Kind             TextureKind
	FileName         string
	RelativeFileName string
}

// BindingEntryKind says where a hardware-shader binding entry resolves.
type BindingEntryKind int

const (
	EntryProperty BindingEntryKind = iota
	EntryConstant
	EntrySemantic
)

// BindingEntry is one row of a hardware-shader binding table.
type BindingEntry struct {
	Source      string
	Destination string
	Kind        BindingEntryKind
}

// Implementation is a hardware-shader binding (HLSL or CGFX) attached to
// a material.
type Implementation struct {
	Language  string
	URL       string
	Technique string
	Entries   []BindingEntry
	Constants []Property
}

// Constant finds a constant by hierarchical name.
func (im *Implementation) Constant(name string) (Property, bool) {
	return findProperty(im.Constants, name)
}

// Material is a surface material. Exactly one Kind is active; the typed
// colour fields are filled for Lambert and Phong (Specular, Shininess and
// Reflectivity for Phong only).
type Material struct {
	Name         string
	ShadingModel string
	Kind         MaterialKind

	Ambient      Colour
	Diffuse      Colour
	Specular     Colour
	Emissive     Colour
	Opacity      float64
	Shininess    float64
	Reflectivity float64

	Properties     []Property
	Implementation *Implementation
	Textures       map[string][]*Texture
}

// Property finds a typed property by name. Hierarchical names such as
// "Maya|DiffuseColor" also match on their final segment.
func (m *Material) Property(name string) (Property, bool) {
	return findProperty(m.Properties, name)
}

// TexturesFor returns the textures bound to the named property.
func (m *Material) TexturesFor(name string) []*Texture {
	if m.Textures == nil {
		return nil
	}
	if t, ok := m.Textures[name]; ok {
		return t
	}
	if i := strings.LastIndex(name, "|"); i >= 0 {
		return m.Textures[name[i+1:]]
	}
	return nil
}

// BindTexture connects t to the named property.
func (m *Material) BindTexture(prop string, t *Texture) {
	if m.Textures == nil {
		m.Textures = make(map[string][]*Texture)
	}
	m.Textures[prop] = append(m.Textures[prop], t)
}

func findProperty(props []Property, name string) (Property, bool) {
	for _, p := range props {
		if p.Name == name {
			return p, true
		}
	}
	if i := strings.LastIndex(name, "|"); i >= 0 {
		return findProperty(props, name[i+1:])
	}
	return Property{}, false
}
