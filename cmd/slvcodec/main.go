// cmd/slvcodec/main.go
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"slvcodec/internal/astin"
	"slvcodec/internal/codegen"
	"slvcodec/internal/hdlpkg"
)

const version = "1.0.0"

var logger = log.New(os.Stderr, "slvcodec: ", log.LstdFlags)

// commandAliases mirrors the teacher's hand-rolled argv dispatch: no CLI
// framework, just a map of short forms to the real subcommand name.
var commandAliases = map[string]string{
	"g": "generate",
	"d": "declare",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		return
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	switch cmd {
	case "--help", "-h", "help":
		showUsage()
	case "--version", "-v", "version":
		fmt.Println("slvcodec " + version)
	case "generate":
		if err := generateCommand(args[1:]); err != nil {
			logger.Fatalf("%v", err)
		}
	case "declare":
		if err := declareCommand(args[1:]); err != nil {
			logger.Fatalf("%v", err)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmd)
		showUsage()
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println(`slvcodec - generate std_logic_vector codec packages from HDL type packages

Usage:
  slvcodec generate -pkg <parse-tree.json> [-pkg <parse-tree.json> ...] [-out <dir>]
  slvcodec declare   -pkg <parse-tree.json>
  slvcodec version
  slvcodec help`)
}

// loadPackages reads and resolves every -pkg file given, against the
// built-in std_logic_1164/numeric_std universe plus each other, via the §4.D
// fix-point (hdlpkg.ResolvePackages handles inter-package "uses"). The
// returned name list preserves -pkg order, so callers can map each input
// path back to its resolved package without re-reading the file.
func loadPackages(paths []string) (map[string]*hdlpkg.Package, []string, error) {
	unresolved := make(map[string]*hdlpkg.UnresolvedPackage, len(paths))
	names := make([]string, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, err
		}
		pkg, err := astin.ParsePackage(data)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", path, err)
		}
		unresolved[pkg.Identifier] = pkg
		names = append(names, pkg.Identifier)
	}
	resolved, err := hdlpkg.ResolvePackages(unresolved)
	if err != nil {
		return nil, nil, err
	}
	return resolved, names, nil
}

func generateCommand(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	var pkgPaths multiFlag
	fs.Var(&pkgPaths, "pkg", "path to a package parse-tree JSON file (repeatable)")
	outDir := fs.String("out", "", "directory to write <pkg>_slvcodec.vhd files to (stdout if empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(pkgPaths) == 0 {
		return fmt.Errorf("generate requires at least one -pkg")
	}

	packages, names, err := loadPackages(pkgPaths)
	if err != nil {
		return err
	}

	generator, err := codegen.NewGenerator()
	if err != nil {
		return err
	}

	runID := uuid.New()
	logger.Printf("run %s: generating %d package(s)", runID, len(pkgPaths))

	results, err := generator.GenerateAll(packages)
	if err != nil {
		return err
	}

	for _, name := range names {
		source, ok := results[name]
		if !ok {
			continue
		}
		if *outDir == "" {
			fmt.Print(source)
			continue
		}
		outPath := filepath.Join(*outDir, name+"_slvcodec.vhd")
		if err := os.WriteFile(outPath, []byte(source), 0o644); err != nil {
			return err
		}
		logger.Printf("wrote %s", outPath)
	}
	return nil
}

func declareCommand(args []string) error {
	fs := flag.NewFlagSet("declare", flag.ExitOnError)
	var pkgPaths multiFlag
	fs.Var(&pkgPaths, "pkg", "path to a package parse-tree JSON file (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(pkgPaths) == 0 {
		return fmt.Errorf("declare requires at least one -pkg")
	}

	packages, names, err := loadPackages(pkgPaths)
	if err != nil {
		return err
	}
	generator, err := codegen.NewGenerator()
	if err != nil {
		return err
	}
	for _, name := range names {
		pkg, ok := packages[name]
		if !ok {
			continue
		}
		fmt.Print(generator.GenerateTypeDeclarations(pkg))
	}
	return nil
}

// multiFlag collects repeated -flag occurrences into a slice, the way
// hand-rolled CLIs without a flag library commonly do.
type multiFlag []string

func (m *multiFlag) String() string { return fmt.Sprint([]string(*m)) }
func (m *multiFlag) Set(value string) error {
	*m = append(*m, value)
	return nil
}
