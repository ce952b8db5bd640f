// Package scene holds the read-only scene graph produced by a scene source
// (the FBX importer or the procedural demo source): nodes with local
// transforms, typed attributes, polygon geometry with normal and material
// layer elements, and materials.
package scene
