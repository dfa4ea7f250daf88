package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"scriptc/pkg/codegen"
	"scriptc/pkg/host"
	"scriptc/pkg/imaging"
	"scriptc/pkg/ir"
	"scriptc/pkg/utils"
)

const appName = "scriptc"

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	settings := utils.LoadSettings()
	args := os.Args[2:]
	switch cmd := os.Args[1]; cmd {
	case "ir":
		os.Exit(cmdIR(args, os.Stdout, os.Stderr))
	case "asm":
		os.Exit(cmdAsm(args, os.Stdout, os.Stderr))
	case "build":
		os.Exit(cmdBuild(args, os.Stdout, os.Stderr))
	case "run":
		os.Exit(cmdRun(args, settings, os.Stdout, os.Stderr))
	case "repl":
		os.Exit(cmdRepl(settings))
	case "-h", "--help", "help":
		usage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, cmd)
		usage(os.Stderr)
		os.Exit(2)
	}
}

func usage(w io.Writer) {
	fmt.Fprintf(w, `Usage:
  %[1]s ir <file>                          Print the three-address instructions and locals.
  %[1]s asm <file> [-image f]              Print the generated assembly.
  %[1]s build <file> [-out f.bin]          Write machine code.
  %[1]s run <file> [-arg name=value]...    Run a script and print its result.
  %[1]s repl                               Start the REPL.

Environment:
  SCRIPTC_MAX_STEPS   CPU step budget per run (default %[2]d)
  SCRIPTC_SHOW_ASM    print assembly before running
  SCRIPTC_WORKERS     render goroutines for image tools
  SCRIPTC_HISTORY     REPL history file
`, appName, utils.DefaultMaxSteps)
}

// argValues collects repeated -arg name=value flags.
type argValues map[string]int32

func (a argValues) String() string {
	names := make([]string, 0, len(a))
	for n := range a {
		names = append(names, n)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("%s=%d", n, a[n])
	}
	return strings.Join(parts, ",")
}

func (a argValues) Set(s string) error {
	name, value, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return fmt.Errorf("expected name=value, got %q", s)
	}
	v, err := strconv.ParseInt(strings.TrimSpace(value), 0, 32)
	if err != nil {
		return fmt.Errorf("argument %s: %w", name, err)
	}
	a[strings.TrimSpace(name)] = int32(v)
	return nil
}

// parseCommand parses flags that may appear before or after the script path.
func parseCommand(fs *flag.FlagSet, args []string) (string, error) {
	var path string
	for {
		if err := fs.Parse(args); err != nil {
			return "", err
		}
		if fs.NArg() == 0 {
			break
		}
		if path != "" {
			return "", fmt.Errorf("unexpected argument %q", fs.Arg(0))
		}
		path = fs.Arg(0)
		args = fs.Args()[1:]
	}
	if path == "" {
		return "", fmt.Errorf("missing script file")
	}
	return path, nil
}

// library returns the standard helpers, plus image accessors when
// imagePath is set.
func library(imagePath string) (*host.Library, error) {
	funcs := host.Standard()
	if imagePath != "" {
		img, err := imaging.Load(imagePath)
		if err != nil {
			return nil, err
		}
		funcs = append(funcs, host.ImageFuncs(img)...)
	}
	return host.NewLibrary("script", funcs...)
}

func printIR(w io.Writer, ctx *ir.Context) {
	for i, inst := range ctx.Instructions() {
		fmt.Fprintf(w, "%3d  %s\n", i, inst)
	}
	fmt.Fprintf(w, "locals: %s\n", strings.Join(ctx.Locals(), ", "))
}

func cmdIR(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("ir", flag.ContinueOnError)
	fs.SetOutput(stderr)
	path, err := parseCommand(fs, args)
	if err != nil {
		fmt.Fprintf(stderr, "usage: %s ir <file>: %v\n", appName, err)
		return 2
	}
	src, _, err := utils.ReadScript(path)
	if err != nil {
		fmt.Fprintln(stderr, "read error:", err)
		return 1
	}
	ctx, err := ir.CompileSource(src)
	if err != nil {
		fmt.Fprintln(stderr, "compile error:", err)
		return 1
	}
	printIR(stdout, ctx)
	return 0
}

func buildFlags(name string, stderr io.Writer) (*flag.FlagSet, *string, argValues) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	imagePath := fs.String("image", "", "image whose accessors (red, green, ...) the script may call")
	params := argValues{}
	fs.Var(params, "arg", "parameter name=value (repeatable)")
	return fs, imagePath, params
}

func buildFile(path, imagePath string, params argValues) (*codegen.Program, error) {
	src, _, err := utils.ReadScript(path)
	if err != nil {
		return nil, err
	}
	lib, err := library(imagePath)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(params))
	for n := range params {
		names = append(names, n)
	}
	sort.Strings(names)
	return codegen.Build(src, lib, names...)
}

func cmdAsm(args []string, stdout, stderr io.Writer) int {
	fs, imagePath, params := buildFlags("asm", stderr)
	path, err := parseCommand(fs, args)
	if err != nil {
		fmt.Fprintf(stderr, "usage: %s asm <file>: %v\n", appName, err)
		return 2
	}
	prog, err := buildFile(path, *imagePath, params)
	if err != nil {
		fmt.Fprintln(stderr, "build error:", err)
		return 1
	}
	fmt.Fprint(stdout, prog.Assembly)
	return 0
}

func cmdBuild(args []string, stdout, stderr io.Writer) int {
	fs, imagePath, params := buildFlags("build", stderr)
	outPath := fs.String("out", "", "output binary file path (default: input with .bin extension)")
	path, err := parseCommand(fs, args)
	if err != nil {
		fmt.Fprintf(stderr, "usage: %s build <file> [-out f.bin]: %v\n", appName, err)
		return 2
	}
	prog, err := buildFile(path, *imagePath, params)
	if err != nil {
		fmt.Fprintln(stderr, "build error:", err)
		return 1
	}
	output := *outPath
	if output == "" {
		output = utils.ReplaceExt(path, ".bin")
	}
	if err := os.WriteFile(output, prog.Code, 0o644); err != nil {
		fmt.Fprintf(stderr, "failed to write binary file %q: %v\n", output, err)
		return 1
	}
	fmt.Fprintf(stdout, "assembled %d bytes -> %s\n", len(prog.Code), output)
	for _, name := range prog.Locals() {
		fmt.Fprintf(stdout, "  %-12s 0x%04X\n", name, prog.Slots[name])
	}
	return 0
}

func cmdRun(args []string, settings utils.Settings, stdout, stderr io.Writer) int {
	fs, imagePath, params := buildFlags("run", stderr)
	maxSteps := fs.Int("max-steps", settings.MaxSteps, "CPU step budget")
	showAsm := fs.Bool("show-asm", settings.ShowAsm, "print the generated assembly first")
	path, err := parseCommand(fs, args)
	if err != nil {
		fmt.Fprintf(stderr, "usage: %s run <file> [-arg name=value]...: %v\n", appName, err)
		return 2
	}
	prog, err := buildFile(path, *imagePath, params)
	if err != nil {
		fmt.Fprintln(stderr, "build error:", err)
		return 1
	}
	if *showAsm {
		fmt.Fprintf(stdout, "Generated Assembly:\n%s\n", prog.Assembly)
	}
	vm := prog.NewCPU(*maxSteps)
	result, err := prog.Run(vm, params)
	if err != nil {
		fmt.Fprintln(stderr, "run error:", err)
		return 1
	}
	fmt.Fprintln(stdout, result)
	return 0
}
