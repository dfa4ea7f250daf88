package utils

import (
	"runtime"

	"github.com/xyproto/env/v2"
)

// Settings are the defaults the binaries take from the environment. Command
// line flags override them.
type Settings struct {
	MaxSteps int    // SCRIPTC_MAX_STEPS: CPU step budget per run
	Workers  int    // SCRIPTC_WORKERS: render goroutines
	ShowAsm  bool   // SCRIPTC_SHOW_ASM: print generated assembly
	History  string // SCRIPTC_HISTORY: REPL history file
}

const DefaultMaxSteps = 100000

func LoadSettings() Settings {
	return normalize(Settings{
		MaxSteps: env.Int("SCRIPTC_MAX_STEPS", DefaultMaxSteps),
		Workers:  env.Int("SCRIPTC_WORKERS", runtime.GOMAXPROCS(0)),
		ShowAsm:  env.Bool("SCRIPTC_SHOW_ASM"),
		History:  env.Str("SCRIPTC_HISTORY", DefaultHistoryPath(".scriptc_history")),
	})
}

func normalize(s Settings) Settings {
	if s.MaxSteps <= 0 {
		s.MaxSteps = DefaultMaxSteps
	}
	if s.Workers <= 0 {
		s.Workers = 1
	}
	return s
}
