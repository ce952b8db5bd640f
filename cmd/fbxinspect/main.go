package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"holomesh/internal/fbx"
	"holomesh/internal/importer"
	"holomesh/internal/scene"
	"holomesh/internal/texture"
)

func main() {
	texDir := flag.String("textures", "", "Texture directory (default: the model's directory)")
	verbose := flag.Bool("v", false, "Log per-mesh debug records to stderr")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: fbxinspect [-textures dir] [-v] model.fbx")
		os.Exit(2)
	}
	path := flag.Arg(0)

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	sc, err := fbx.Import(path, fbx.ImportOptions{Logger: logger})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("File: %s\n", path)
	fmt.Printf("Version: %d, Creator: %q, Nodes: %d\n", sc.Version, sc.Creator, scene.Count(sc.Root))

	fmt.Println("\nScene:")
	scene.PrintChildren(os.Stdout, sc.Root)

	dir := *texDir
	if dir == "" {
		dir = filepath.Dir(path)
	}
	cache := texture.NewCache(texture.BuildIndex(dir))
	printTextures(sc, cache)

	im := importer.New(importer.Options{Logger: logger, Textures: cache})
	m, err := im.LoadScene(sc)
	report := im.Report()

	if report != nil {
		fmt.Println("\nMaterials:")
		for _, r := range report.Materials {
			fmt.Printf("  [%d] %s (%s)\n", r.Index, r.Name, r.Kind)
			for _, f := range r.Fields {
				fmt.Printf("      %-28s %s\n", f.Key, f.Value)
			}
		}

		fmt.Println("\nMeshes:")
		for _, r := range report.Meshes {
			if r.Err != nil {
				fmt.Printf("  %s/%s: skipped: %v\n", r.Node, r.Geometry, r.Err)
				continue
			}
			fmt.Printf("  %s/%s: verts=%d, tris=%d\n", r.Node, r.Geometry, r.Vertices, r.Triangles)
		}
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	verts, tris := m.Stats()
	lo, hi := m.Bounds()
	fmt.Printf("\nModel: %d meshes, %d verts, %d tris\n", len(m.Meshes()), verts, tris)
	fmt.Printf("  BBox: X[%.2f, %.2f] Y[%.2f, %.2f] Z[%.2f, %.2f]\n", lo[0], hi[0], lo[1], hi[1], lo[2], hi[2])
	fmt.Printf("  Size: %.2f x %.2f x %.2f\n", hi[0]-lo[0], hi[1]-lo[1], hi[2]-lo[2])
}

// printTextures lists every texture bound to a material with the file it
// resolves to and its decoded size.
func printTextures(sc *scene.Scene, cache *texture.Cache) {
	fmt.Println("\nTextures:")
	seen := make(map[*scene.Texture]bool)
	n := 0
	scene.Traverse(sc.Root, func(node *scene.Node, _ *scene.Geometry) {
		for _, mat := range node.Materials {
			props := make([]string, 0, len(mat.Textures))
			for p := range mat.Textures {
				props = append(props, p)
			}
			sort.Strings(props)
			for _, p := range props {
				for _, t := range mat.Textures[p] {
					if seen[t] {
						continue
					}
					seen[t] = true
					n++
					printTexture(mat.Name, p, t, cache)
				}
			}
		}
	})
	if n == 0 {
		fmt.Println("  (none)")
	}
}

func printTexture(material, prop string, t *scene.Texture, cache *texture.Cache) {
	fmt.Printf("  %s.%s: %s (%s)\n", material, prop, t.Name, t.Kind)
	file, ok := cache.Lookup(t)
	if !ok {
		fmt.Printf("      not found: %q\n", t.FileName)
		return
	}
	img, err := cache.Image(t)
	if err != nil {
		fmt.Printf("      %s: %v\n", file, err)
		return
	}
	b := img.Bounds()
	fmt.Printf("      %s: %dx%d\n", file, b.Dx(), b.Dy())
}
