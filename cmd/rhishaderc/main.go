// Command rhishaderc compiles WGSL into the shader blobs rhi accepts.
//
// Usage:
//
//	rhishaderc [-target spirv|dxil] [-entry name] [-o out] shader.wgsl
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

func main() {
	var (
		target = flag.String("target", "spirv", "output bytecode: spirv or dxil")
		entry  = flag.String("entry", "", "entry point to compile to DXIL (default: first)")
		output = flag.String("o", "", "output file (default: input name with .spv or .dxil)")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: rhishaderc [flags] shader.wgsl\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	input := flag.Arg(0)

	bc, err := parseTarget(*target)
	if err != nil {
		log.Fatal(err)
	}
	src, err := os.ReadFile(input)
	if err != nil {
		log.Fatalf("Failed to read shader: %v", err)
	}
	blob, err := compile(string(src), bc, *entry)
	if err != nil {
		log.Fatalf("%s: %v", input, err)
	}

	out := *output
	if out == "" {
		out = strings.TrimSuffix(input, filepath.Ext(input)) + extension(bc)
	}
	if err := os.WriteFile(out, blob, 0o644); err != nil {
		log.Fatalf("Failed to write: %v", err)
	}
	log.Printf("%s: %d bytes of %s\n", out, len(blob), bc)
}
