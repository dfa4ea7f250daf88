package main

import (
	"bytes"
	"flag"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scriptc/pkg/imaging"
	"scriptc/pkg/utils"
)

func writeScript(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.txt")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestArgValues(t *testing.T) {
	a := argValues{}
	for _, s := range []string{"x=3", "y = -4", "z=0x10"} {
		if err := a.Set(s); err != nil {
			t.Fatalf("Set(%q): %v", s, err)
		}
	}
	if got := a.String(); got != "x=3,y=-4,z=16" {
		t.Errorf("String() = %q", got)
	}
	for _, bad := range []string{"x", "=1", "x=abc", "x=99999999999"} {
		if err := a.Set(bad); err == nil {
			t.Errorf("Set(%q): expected error", bad)
		}
	}
}

func TestParseCommand(t *testing.T) {
	fs := flag.NewFlagSet("t", flag.ContinueOnError)
	n := fs.Int("n", 0, "")
	path, err := parseCommand(fs, []string{"-n", "1", "file.txt", "-n", "2"})
	if err != nil {
		t.Fatal(err)
	}
	if path != "file.txt" || *n != 2 {
		t.Errorf("parseCommand = %q, n=%d", path, *n)
	}

	fs = flag.NewFlagSet("t", flag.ContinueOnError)
	if _, err := parseCommand(fs, nil); err == nil {
		t.Errorf("expected error for missing file")
	}
	fs = flag.NewFlagSet("t", flag.ContinueOnError)
	if _, err := parseCommand(fs, []string{"a", "b"}); err == nil {
		t.Errorf("expected error for two files")
	}
}

func TestCmdIR(t *testing.T) {
	path := writeScript(t, "a = 1 + 2 * 3\n")
	var out, errOut bytes.Buffer
	if code := cmdIR([]string{path}, &out, &errOut); code != 0 {
		t.Fatalf("exit %d: %s", code, errOut.String())
	}
	want := []string{
		"  0  [!1] <- 1",
		"  1  [!2] <- 2",
		"  2  [!3] <- 3",
		"  3  [!4] <- MULTIPLY([!2], [!3])",
		"  4  [a] <- ADD([!1], [!4])",
		"locals: a, !1, !2, !3, !4",
	}
	if got := strings.TrimRight(out.String(), "\n"); got != strings.Join(want, "\n") {
		t.Errorf("output =\n%s\nwant\n%s", got, strings.Join(want, "\n"))
	}
}

func TestCmdRun(t *testing.T) {
	settings := utils.Settings{MaxSteps: 1000, Workers: 1}
	tests := []struct {
		name    string
		src     string
		args    []string
		want    string
		wantErr bool
	}{
		{"Plain", "return 6 * 7", nil, "42", false},
		{"Args", "return max(x, y) - min(x, y)", []string{"-arg", "x=3", "-arg", "y=10"}, "7", false},
		{"ArgsAfterFile", "return x", []string{"-arg", "x=5"}, "5", false},
		{"DivideByZero", "return 1 / 0", nil, "", true},
		{"UnknownFunction", "return nope(1)", nil, "", true},
		{"SyntaxError", "return (1", nil, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScript(t, tt.src)
			args := append([]string{path}, tt.args...)
			if tt.name == "Args" {
				args = append(tt.args, path)
			}
			var out, errOut bytes.Buffer
			code := cmdRun(args, settings, &out, &errOut)
			if tt.wantErr {
				if code == 0 {
					t.Errorf("expected failure, got output %q", out.String())
				}
				return
			}
			if code != 0 {
				t.Fatalf("exit %d: %s", code, errOut.String())
			}
			if got := strings.TrimSpace(out.String()); got != tt.want {
				t.Errorf("output = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestCmdRunStepLimit(t *testing.T) {
	path := writeScript(t, "a = 1 + 2 + 3 + 4\nreturn a")
	var out, errOut bytes.Buffer
	if code := cmdRun([]string{"-max-steps", "4", path}, utils.Settings{MaxSteps: 1000}, &out, &errOut); code == 0 {
		t.Errorf("expected step limit failure")
	}
	if !strings.Contains(errOut.String(), "step limit") {
		t.Errorf("stderr = %q", errOut.String())
	}
}

func TestCmdRunWithImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(1, 1, color.RGBA{R: 9, G: 8, B: 7, A: 255})
	imgPath := filepath.Join(t.TempDir(), "in.png")
	if err := imaging.Save(imgPath, img); err != nil {
		t.Fatal(err)
	}
	path := writeScript(t, "return red(1, 1) * 100 + width()")
	var out, errOut bytes.Buffer
	if code := cmdRun([]string{"-image", imgPath, path}, utils.Settings{MaxSteps: 1000}, &out, &errOut); code != 0 {
		t.Fatalf("exit %d: %s", code, errOut.String())
	}
	if got := strings.TrimSpace(out.String()); got != "902" {
		t.Errorf("output = %q; want 902", got)
	}
}

func TestCmdAsmAndBuild(t *testing.T) {
	path := writeScript(t, "return 7")
	var out, errOut bytes.Buffer
	if code := cmdAsm([]string{path}, &out, &errOut); code != 0 {
		t.Fatalf("asm exit %d: %s", code, errOut.String())
	}
	if !strings.Contains(out.String(), "LDI R0, 7") || !strings.Contains(out.String(), ".WORD 0") {
		t.Errorf("asm output = %q", out.String())
	}

	out.Reset()
	if code := cmdBuild([]string{path}, &out, &errOut); code != 0 {
		t.Fatalf("build exit %d: %s", code, errOut.String())
	}
	bin, err := os.ReadFile(utils.ReplaceExt(path, ".bin"))
	if err != nil {
		t.Fatal(err)
	}
	if len(bin) == 0 || !strings.Contains(out.String(), "assembled") {
		t.Errorf("build wrote %d bytes, output %q", len(bin), out.String())
	}
}

func TestReplSession(t *testing.T) {
	lib, err := library("")
	if err != nil {
		t.Fatal(err)
	}
	s := &replSession{lib: lib, maxSteps: 1000}

	var out bytes.Buffer
	if err := s.eval("a = abs(-3)\nreturn a * 2", &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "[a] <- CALL abs([!2])") || !strings.Contains(out.String(), "= 6") {
		t.Errorf("eval output = %q", out.String())
	}

	// Locals do not carry over between inputs.
	out.Reset()
	if err := s.eval("return a", &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "= 0") {
		t.Errorf("eval output = %q", out.String())
	}

	if err := s.eval("1 = 2", &out); err == nil {
		t.Errorf("expected compile error")
	}

	out.Reset()
	if !s.command(":asm", &out) || !s.showAsm {
		t.Errorf(":asm did not toggle")
	}
	if !s.command(":funcs", &out) || !strings.Contains(out.String(), "clamp") {
		t.Errorf(":funcs output = %q", out.String())
	}
	if s.command(":quit", &out) {
		t.Errorf(":quit should end the session")
	}
}
