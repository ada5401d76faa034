package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/softtrail/serpentines/preset"
)

// presetlint validates preset files and reports clamp warnings and fatal
// errors. Exit code 0 means every file loaded, 1 means at least one was
// rejected.
func main() {
	quiet := flag.Bool("quiet", false, "Suppress warnings, report only fatal errors")
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "usage: presetlint [-quiet] <preset.yaml|dir> ...")
		os.Exit(2)
	}

	failed := 0
	for _, path := range paths {
		for _, file := range expand(path) {
			if !lint(file, *quiet) {
				failed++
			}
		}
	}

	if failed > 0 {
		fmt.Printf("%d preset(s) rejected\n", failed)
		os.Exit(1)
	}
}

// expand resolves a directory argument to its preset files.
func expand(path string) []string {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return []string{path}
	}

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, _ := filepath.Glob(filepath.Join(path, pattern))
		files = append(files, matches...)
	}
	return files
}

func lint(path string, quiet bool) bool {
	p, warnings, err := preset.LoadFile(path)
	if err != nil {
		fmt.Printf("%s: ERROR: %v\n", path, err)
		return false
	}

	if !quiet {
		for _, w := range warnings {
			fmt.Printf("%s: warning: %s: %s\n", path, w.Field, w.Message)
		}
	}
	fmt.Printf("%s: ok (%s, %d warnings)\n", path, p.Name, len(warnings))
	return true
}
