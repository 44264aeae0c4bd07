// xtool is a CLI utility for inspecting and converting DirectX .X scene files.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/xscene/internal/config"
	"github.com/Faultbox/xscene/internal/logger"
	"github.com/Faultbox/xscene/pkg/scene"
	"github.com/Faultbox/xscene/pkg/xfile"
)

func main() {
	config.ParseFlags()
	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	command := flag.Arg(0)
	args := flag.Args()[1:]

	switch command {
	case "info":
		cmdInfo(cfg, args)
	case "tree":
		cmdTree(cfg, args)
	case "validate":
		cmdValidate(cfg, args)
	case "convert":
		cmdConvert(cfg, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`xtool - DirectX .X scene file utility

Usage:
  xtool [flags] <command> [options]

Flags:
  -config <path>   Use an explicit config file
  -debug           Enable debug logging
  -lenient         Sort out-of-order animation keys instead of failing
  -double          Emit 64-bit floats when re-encoding

Commands:
  info <file.x>              Show header and scene statistics
  tree <file.x>              Dump the node hierarchy
  validate <file.x>          Import with the full validation pass set
  convert <file.x> [out.x]   Re-encode as text (stdout if no output path)

Examples:
  xtool info model.x
  xtool tree model.x
  xtool validate model.x
  xtool convert model.x model_text.x`)
}

func loadOptions(cfg *config.Config) xfile.Options {
	opts, err := cfg.Options()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return opts
}

func importScene(path string, opts xfile.Options) *scene.Scene {
	s, err := xfile.ImportFile(path, opts)
	if err != nil {
		logger.Error("import failed", zap.String("file", path), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return s
}

func cmdInfo(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: xtool info <file.x>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	hdr, _, err := xfile.ParseHeader(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	s := importScene(path, loadOptions(cfg))

	var faces, vertices, bones int
	for _, m := range s.Meshes {
		faces += len(m.Faces)
		vertices += len(m.Positions)
		bones += len(m.Bones)
	}

	fmt.Printf("File:       %s\n", path)
	fmt.Printf("Version:    %s\n", hdr.Version())
	fmt.Printf("Encoding:   %s", hdr.Encoding)
	if hdr.Compressed {
		fmt.Print(" (compressed)")
	}
	fmt.Println()
	fmt.Printf("Floats:     %d-bit\n", hdr.FloatSize*8)
	fmt.Printf("Meshes:     %d (%d vertices, %d faces)\n", len(s.Meshes), vertices, faces)
	fmt.Printf("Materials:  %d\n", len(s.Materials))
	fmt.Printf("Bones:      %d\n", bones)
	fmt.Printf("Animations: %d\n", len(s.Animations))
	if s.TicksPerSecond > 0 {
		fmt.Printf("Ticks/sec:  %g\n", s.TicksPerSecond)
	}
}

func cmdTree(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("tree", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: xtool tree <file.x>")
		os.Exit(1)
	}

	s := importScene(fs.Arg(0), loadOptions(cfg))
	if s.Root != nil {
		printNode(s, s.Root, 0)
	}
}

func printNode(s *scene.Scene, n *scene.Node, depth int) {
	name := n.Name
	if name == "" {
		name = "(unnamed)"
	}
	indent := strings.Repeat("  ", depth)
	if len(n.Meshes) > 0 {
		var meshNames []string
		for _, mi := range n.Meshes {
			mn := s.Meshes[mi].Name
			if mn == "" {
				mn = fmt.Sprintf("#%d", mi)
			}
			meshNames = append(meshNames, mn)
		}
		fmt.Printf("%s%s [mesh: %s]\n", indent, name, strings.Join(meshNames, ", "))
	} else {
		fmt.Printf("%s%s\n", indent, name)
	}
	for _, c := range n.Children {
		printNode(s, c, depth+1)
	}
}

func cmdValidate(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: xtool validate <file.x>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	opts := loadOptions(cfg)
	opts.PostProcess |= scene.ValidateDataStructure
	importScene(path, opts)
	fmt.Printf("%s: OK\n", path)
}

func cmdConvert(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: xtool convert <file.x> [out.x]")
		os.Exit(1)
	}

	opts := loadOptions(cfg)
	s := importScene(fs.Arg(0), opts)
	out := xfile.EncodeText(s, opts.DoublePrecision)

	if fs.NArg() > 1 {
		if err := os.WriteFile(fs.Arg(1), out, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s (%d bytes)\n", fs.Arg(1), len(out))
		return
	}
	os.Stdout.Write(out)
}
