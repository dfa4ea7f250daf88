package main

import (
	"fmt"
	"os"

	"scriptc/pkg/codegen"
	"scriptc/pkg/host"
	"scriptc/pkg/ir"
	"scriptc/pkg/script"
)

const testSource = `a = 1 + 2 * 3
b = max(a, 10)
return b
`

func main() {
	src := testSource
	if len(os.Args) > 1 {
		data, err := os.ReadFile(os.Args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, "read error:", err)
			os.Exit(1)
		}
		src = string(data)
	}

	fmt.Printf("Source:\n%s\n", src)

	// Lex
	tokens, err := script.Lex(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, "lex error:", err)
		os.Exit(1)
	}

	fmt.Printf("Tokens (%d)\n", len(tokens))
	for _, tok := range tokens {
		fmt.Println(" ", tok)
	}
	fmt.Println()

	// Parse
	tree, err := script.Parse(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, "parse error:", err)
		os.Exit(1)
	}

	fmt.Println("Tree")
	for _, s := range tree.Children {
		fmt.Println(" ", s)
	}
	fmt.Println()

	// Compile
	ctx, err := ir.Compile(tree)
	if err != nil {
		fmt.Fprintln(os.Stderr, "compile error:", err)
		os.Exit(1)
	}

	fmt.Printf("Instructions (%d)\n", len(ctx.Instructions()))
	for _, inst := range ctx.Instructions() {
		fmt.Println(" ", inst)
	}
	fmt.Println()

	// Code generation
	lib, err := host.NewLibrary("std", host.Standard()...)
	if err != nil {
		fmt.Fprintln(os.Stderr, "library error:", err)
		os.Exit(1)
	}
	prog, err := codegen.BuildContext(ctx, lib)
	if err != nil {
		fmt.Fprintln(os.Stderr, "codegen error:", err)
		os.Exit(1)
	}

	fmt.Println("Generated Assembly")
	fmt.Print(prog.Assembly)
	fmt.Println()

	fmt.Println("Locals")
	for _, name := range prog.Locals() {
		fmt.Printf("  %-20s  Addr: 0x%04X\n", name, prog.Slots[name])
	}
}
