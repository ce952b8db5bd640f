package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"holomesh/internal/fbx"
	"holomesh/internal/scene"
)

func main() {
	out := flag.String("o", "demo.fbx", "Output FBX file")
	cells := flag.Int("cells", scene.DefaultMeshCells, "Marching cubes cells along the longest axis")
	version := flag.Uint("version", 7400, "FBX version; 7500 and later use 64-bit record headers")
	compress := flag.Bool("compress", true, "Deflate large arrays")
	flag.Parse()

	sc, err := scene.Procedural(scene.DemoSolids(), *cells)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	w := bufio.NewWriter(f)
	err = fbx.ExportScene(w, sc, fbx.EncodeOptions{
		Version:     uint32(*version),
		Compress:    *compress,
		CompressMin: 1024,
	})
	if err == nil {
		err = w.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *out, err)
		os.Exit(1)
	}

	for _, n := range sc.Root.Children {
		g := n.Mesh()
		fmt.Printf("  %s: %d points, %d polygons\n", n.Name, len(g.ControlPoints), len(g.PolygonSizes))
	}
	fmt.Printf("Wrote %s\n", *out)
}
