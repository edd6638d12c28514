package main

import (
	"os"

	"github.com/inconshreveable/log15"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// setupLogging routes the root logger to stderr. Only warnings are shown
// unless verbose output was requested.
func setupLogging(verbose bool) {
	format := log15.LogfmtFormat()
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		format = log15.TerminalFormat()
	}

	level := log15.LvlWarn
	if verbose {
		level = log15.LvlDebug
	}
	log15.Root().SetHandler(log15.LvlFilterHandler(level, log15.StreamHandler(colorable.NewColorableStderr(), format)))
}
