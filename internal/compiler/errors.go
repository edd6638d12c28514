package compiler

import (
	"fmt"
	"strings"
)

// IOError is a filesystem failure. It is always fatal to the run.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// BuildError reports a failed or unstartable native build.
type BuildError struct {
	Command string
	Dir     string
	Stderr  string
	Err     error
}

func (e *BuildError) Error() string {
	msg := fmt.Sprintf("build command '%s' in %s failed: %v", e.Command, e.Dir, e.Err)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += "\n" + stderr
	}
	return msg
}

func (e *BuildError) Unwrap() error { return e.Err }

// ModuleError ties a failure to the module it happened in. Err is usually one
// of the stage sentinels, whose details were already reported as diagnostics.
type ModuleError struct {
	Module string
	Path   string
	Err    error
}

func (e *ModuleError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("module '%s': %v", e.Module, e.Err)
	}
	return fmt.Sprintf("module '%s' (%s): %v", e.Module, e.Path, e.Err)
}

func (e *ModuleError) Unwrap() error { return e.Err }
