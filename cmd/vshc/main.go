// Command vshc disassembles and translates Xbox vertex shader microcode.
//
// Usage:
//
//	vshc [options] <input>
//
// The input is a raw little-endian vertex shader function, either with its
// one-word header or as program memory slots.
//
// Examples:
//
//	vshc -dis shader.xvu                     # Print the decoded program, then SPIR-V to stdout
//	vshc -o shader.spv shader.xvu            # Translate to SPIR-V
//	vshc -target wgsl -o shader.wgsl shader.xvu
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gogpu/nv2a"
	"github.com/gogpu/nv2a/internal/shadergen"
	"github.com/gogpu/nv2a/internal/vsh"
)

var errUsage = errors.New("no input file specified")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("vshc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		target  = fs.String("target", "spirv", "output target: spirv, wgsl, hlsl, glsl or msl")
		output  = fs.String("o", "", "output file (default: stdout)")
		dis     = fs.Bool("dis", false, "print the decoded program")
		verbose = fs.Bool("v", false, "log diagnostics to stderr")
	)
	fs.Usage = func() { usage(fs) }
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		usage(fs)
		return errUsage
	}
	if *verbose {
		nv2a.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		defer nv2a.SetLogger(nil)
	}

	t, err := shadergen.ParseTarget(*target)
	if err != nil {
		return err
	}

	input := fs.Arg(0)
	raw, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	s, size, err := vsh.ParseBytes(raw)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", input, err)
	}
	if *dis {
		fmt.Fprintf(stdout, "; %s, %d bytes, %s\n", input, size, vsh.Classify(s))
		fmt.Fprint(stdout, vsh.Disassemble(s))
	}

	source, err := shadergen.Generate(s)
	if err != nil {
		return fmt.Errorf("generating %s: %w", input, err)
	}
	out, err := shadergen.Translate(source, t)
	if err != nil {
		return fmt.Errorf("translating %s to %s: %w", input, t, err)
	}

	if *output == "" {
		_, err = stdout.Write(out)
		return err
	}
	if err := os.WriteFile(*output, out, 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	fmt.Fprintf(stderr, "Translated %s to %s (%s, %d bytes)\n", input, *output, t, len(out))
	return nil
}

func usage(fs *flag.FlagSet) {
	w := fs.Output()
	fmt.Fprintf(w, "Usage: vshc [options] <input>\n\n")
	fmt.Fprintf(w, "Options:\n")
	fs.PrintDefaults()
	fmt.Fprintf(w, "\nExamples:\n")
	fmt.Fprintf(w, "  vshc -dis shader.xvu                     Disassemble, SPIR-V to stdout\n")
	fmt.Fprintf(w, "  vshc -o shader.spv shader.xvu            Translate to SPIR-V\n")
	fmt.Fprintf(w, "  vshc -target wgsl -o out.wgsl shader.xvu Translate to WGSL\n")
}
