package fbx

// cubeASCII is a two-model scene: a parent null and a child quad mesh
// with by-polygon-vertex normals, by-polygon materials, two materials
// (one phong, one hardware shader) and a diffuse texture.
const cubeASCII = `; FBX 7.4.0 project file
; ----------------------------------------------------

FBXHeaderExtension:  {
	FBXHeaderVersion: 1003
	FBXVersion: 7400
	Creator: "FBX SDK/FBX Plugins version 2020.0"
}
Creator: "test exporter"

Objects:  {
	Geometry: 200, "Geometry::Quad", "Mesh" {
		Vertices: *15 {
			a: 0,0,0,1,0,0,1,1,0,0,1,0,
			2,0,0
		} 
		PolygonVertexIndex: *7 {
			a: 0,1,2,-4,1,4,-3
		} 
		GeometryVersion: 124
		LayerElementNormal: 0 {
			Version: 101
			Name: ""
			MappingInformationType: "ByPolygonVertex"
			ReferenceInformationType: "IndexToDirect"
			Normals: *6 {
				a: 0,0,1,0,0,-1
			} 
			NormalsIndex: *7 {
				a: 0,0,0,0,1,1,1
			} 
		}
		LayerElementMaterial: 0 {
			Version: 101
			Name: ""
			MappingInformationType: "ByPolygon"
			ReferenceInformationType: "IndexToDirect"
			Materials: *2 {
				a: 0,1
			} 
		}
	}
	Model: 100, "Model::Parent", "Null" {
		Version: 232
		Properties70:  {
			P: "Lcl Translation", "Lcl Translation", "", "A",0,5,0
		}
		Shading: Y
		Culling: "CullingOff"
	}
	Model: 101, "Model::Quad", "Mesh" {
		Version: 232
		Properties70:  {
			P: "Lcl Translation", "Lcl Translation", "", "A",1,2,3
			P: "Lcl Rotation", "Lcl Rotation", "", "A",0,90,0
			P: "Lcl Scaling", "Lcl Scaling", "", "A",2,2,2
		}
		Shading: T
	}
	NodeAttribute: 300, "NodeAttribute::", "Null" {
		TypeFlags: "Null"
	}
	Material: 400, "Material::Red", "" {
		Version: 102
		ShadingModel: "phong"
		MultiLayer: 0
		Properties70:  {
			P: "AmbientColor", "Color", "", "A",0.1,0.1,0.1
			P: "DiffuseColor", "Color", "", "A",1,0,0
			P: "SpecularColor", "Color", "", "A",0.5,0.5,0.5
			P: "Shininess", "double", "Number", "",20
			P: "Opacity", "double", "Number", "",1
		}
	}
	Material: 401, "Material::Shader", "" {
		Version: 102
		ShadingModel: "unknown"
		Properties70:  {
			P: "Maya|DiffuseColor", "Vector3D", "Vector", "",0,0,1
			P: "Maya|UseTexture", "bool", "", "",1
			P: "Maya|Gloss", "float", "", "",0.25
			P: "Maya|Label", "KString", "", "", "shiny"
		}
	}
	Implementation: 500, "Implementation::ShaderImpl", "" {
		Version: 100
		Properties70:  {
			P: "ShaderLanguage", "KString", "", "", "HLSL"
			P: "RenderAPI", "KString", "", "", "DirectX"
		}
	}
	BindingTable: 501, "BindingTable::root", "" {
		Version: 100
		Properties70:  {
			P: "DescAbsoluteURL", "KString", "", "", "C:/shaders/shiny.fx"
			P: "DescTAG", "KString", "", "", "Main"
		}
		Entry: "Maya|DiffuseColor", "FbxPropertyEntry", "DiffuseColor", "FbxSemanticEntry"
		Entry: "Maya|UseTexture", "FbxPropertyEntry", "UseTexture", "FbxSemanticEntry"
	}
	Texture: 600, "Texture::Bricks", "" {
		Type: "TextureVideoClip"
		FileName: "C:/assets/bricks.png"
		RelativeFilename: "textures\bricks.png"
	}
}

Connections:  {
	;Model::Parent, Model::RootNode
	C: "OO",100,0
	;Model::Quad, Model::Parent
	C: "OO",101,100
	C: "OO",200,101
	C: "OO",300,100
	C: "OO",400,101
	C: "OO",401,101
	C: "OO",500,401
	C: "OO",501,500
	C: "OP",600,400, "DiffuseColor"
}
`
