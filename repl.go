package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"scriptc/pkg/codegen"
	"scriptc/pkg/host"
	"scriptc/pkg/ir"
	"scriptc/pkg/script"
	"scriptc/pkg/utils"
)

const (
	promptMain = ">> "
	promptCont = ".. "
)

const replHelp = `REPL commands:
  :asm     Toggle printing of generated assembly
  :funcs   List callable host functions
  :quit    Exit the REPL
Each input is compiled on its own; locals do not carry over.
`

func red(s string) string  { return "\x1b[31m" + s + "\x1b[0m" }
func blue(s string) string { return "\x1b[94m" + s + "\x1b[0m" }

// replSession evaluates one input at a time in a fresh compilation context.
type replSession struct {
	lib      *host.Library
	maxSteps int
	showAsm  bool
}

// eval compiles and runs src, writing the instruction listing and result.
func (s *replSession) eval(src string, out io.Writer) error {
	ctx, err := ir.CompileSource(src)
	if err != nil {
		return err
	}
	printIR(out, ctx)
	prog, err := codegen.BuildContext(ctx, s.lib)
	if err != nil {
		return err
	}
	if s.showAsm {
		fmt.Fprint(out, prog.Assembly)
	}
	result, err := prog.Run(prog.NewCPU(s.maxSteps), nil)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, blue(fmt.Sprintf("= %d", result)))
	return nil
}

// command handles a ":" line. It reports false when the REPL should exit.
func (s *replSession) command(line string, out io.Writer) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case ":quit", ":q":
		return false
	case ":asm":
		s.showAsm = !s.showAsm
		fmt.Fprintf(out, "show assembly: %t\n", s.showAsm)
	case ":funcs":
		fmt.Fprintln(out, strings.Join(s.lib.Names(), " "))
	case ":help":
		fmt.Fprint(out, replHelp)
	default:
		fmt.Fprintln(out, "unknown command. Type :help for help.")
	}
	return true
}

func cmdRepl(settings utils.Settings) int {
	fmt.Printf("%s REPL\nCtrl+C cancels input, Ctrl+D exits. Type :help for commands.\n", appName)

	lib, err := library("")
	if err != nil {
		fmt.Fprintln(os.Stderr, red(err.Error()))
		return 1
	}
	session := &replSession{lib: lib, maxSteps: settings.MaxSteps, showAsm: settings.ShowAsm}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if settings.History != "" {
		if f, err := os.Open(settings.History); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(settings.History); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	for {
		code, ok := readByParseProbe(ln, promptMain, promptCont)
		if !ok {
			fmt.Println()
			break
		}
		if strings.TrimSpace(code) == "" {
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(code), ":") {
			if !session.command(code, os.Stdout) {
				return 0
			}
			continue
		}

		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
		if err := session.eval(code, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
		}
	}
	return 0
}

// readByParseProbe keeps reading continuation lines while the input so far
// fails to parse only because a bracket is still open.
func readByParseProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if _, perr := script.Parse(src); perr != nil && script.IsIncomplete(perr) {
			continue
		}
		return src, true
	}
}
