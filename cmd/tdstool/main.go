// tdstool is a CLI utility for inspecting Discreet 3DS scene files.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"

	"github.com/daeyun/assimp/internal/config"
	"github.com/daeyun/assimp/internal/logger"
	"github.com/daeyun/assimp/pkg/formats"
)

func main() {
	config.ParseFlags()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	decodeLog := logger.Log
	if cfg.Decode.Quiet {
		decodeLog = zap.NewNop()
	}

	command := flag.Arg(0)
	switch command {
	case "info":
		cmdInfo(flag.Arg(1), decodeLog)
	case "tree":
		cmdTree(flag.Arg(1), decodeLog)
	case "materials", "mats":
		cmdMaterials(flag.Arg(1), decodeLog)
	case "dump":
		cmdDump(flag.Arg(1), decodeLog)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tdstool - Discreet 3DS scene file utility

Usage:
  tdstool [flags] <command> <file.3ds>

Commands:
  info <file.3ds>       Show scene summary
  tree <file.3ds>       Print the node hierarchy
  materials <file.3ds>  List materials and texture slots
  dump <file.3ds>       Dump the full parsed document

Flags:
  -log-level <level>    Log level (debug, info, warn, error)
  -log-file <path>      Also log to a rotated file
  -quiet                Suppress recoverable decode diagnostics
  -config <path>        Path to config file

Examples:
  tdstool info scene.3ds
  tdstool -log-level warn tree scene.3ds`)
}

func parse(path string, log *zap.Logger) *formats.TDS {
	if path == "" {
		fmt.Fprintln(os.Stderr, "Usage: tdstool <command> <file.3ds>")
		os.Exit(1)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	doc, err := formats.ParseTDSWithLogger(data, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing %s: %v\n", path, err)
		os.Exit(1)
	}
	return doc
}

func cmdInfo(path string, log *zap.Logger) {
	doc := parse(path, log)

	fmt.Printf("Scene:        %s\n", path)
	fmt.Printf("Meshes:       %d\n", len(doc.Meshes))
	fmt.Printf("Materials:    %d\n", len(doc.Materials))
	fmt.Printf("Nodes:        %d\n", doc.NodeCount())
	fmt.Printf("Vertices:     %d\n", doc.TotalVertexCount())
	fmt.Printf("Faces:        %d\n", doc.TotalFaceCount())
	fmt.Printf("Master scale: %g\n", doc.MasterScale)
	fmt.Printf("Ambient:      (%.3f, %.3f, %.3f)\n", doc.Ambient.R, doc.Ambient.G, doc.Ambient.B)
	fmt.Printf("Animated:     %v\n", doc.HasAnimation())
	if doc.HasBackground || doc.BackgroundImage != "" {
		fmt.Printf("Background:   %q (present: %v)\n", doc.BackgroundImage, doc.HasBackground)
	}

	for i := range doc.Meshes {
		m := &doc.Meshes[i]
		fmt.Printf("  mesh %-24q %6d verts %6d uvs %6d faces\n",
			m.Name, len(m.Positions), len(m.TexCoords), len(m.Faces))
	}
}

func cmdTree(path string, log *zap.Logger) {
	doc := parse(path, log)
	printNode(doc.Root, 0)
}

func printNode(n *formats.TDSNode, depth int) {
	name := n.Name
	if n.Parent == nil {
		name = "<root>"
	}
	fmt.Printf("%s%s", strings.Repeat("  ", depth), name)
	if n.HasAnimation() {
		fmt.Printf("  [%d pos, %d rot, %d scale keys]",
			len(n.PositionKeys), len(n.RotationKeys), len(n.ScalingKeys))
	}
	fmt.Println()
	for _, c := range n.Children {
		printNode(c, depth+1)
	}
}

func cmdMaterials(path string, log *zap.Logger) {
	doc := parse(path, log)

	for i := range doc.Materials {
		m := &doc.Materials[i]
		fmt.Printf("[%d] %q shading=%s two-sided=%v transparency=%.3f\n",
			i, m.Name, m.Shading, m.TwoSided, m.Transparency)
		fmt.Printf("    diffuse  (%.3f, %.3f, %.3f)\n", m.Diffuse.R, m.Diffuse.G, m.Diffuse.B)
		fmt.Printf("    specular (%.3f, %.3f, %.3f) exponent=%.1f strength=%.3f\n",
			m.Specular.R, m.Specular.G, m.Specular.B, m.SpecularExponent, m.ShininessStrength)
		printTexture("diffuse", &m.TexDiffuse)
		printTexture("bump", &m.TexBump)
		printTexture("opacity", &m.TexOpacity)
		printTexture("shininess", &m.TexShininess)
		printTexture("specular", &m.TexSpecular)
		printTexture("emissive", &m.TexEmissive)
	}
}

func printTexture(slot string, tex *formats.TDSTexture) {
	if tex.MapName == "" {
		return
	}
	fmt.Printf("    map %-9s %q blend=%.2f scale=(%g, %g) offset=(%g, %g) mode=%s\n",
		slot, tex.MapName, tex.Blend, tex.ScaleU, tex.ScaleV, tex.OffsetU, tex.OffsetV, tex.MapMode)
}

func cmdDump(path string, log *zap.Logger) {
	doc := parse(path, log)
	spew.Dump(doc)
}
