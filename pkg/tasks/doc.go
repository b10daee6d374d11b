// Package tasks implements a small build system: task definitions live in a
// Starlark file and their commands run through mvdan.cc/sh's shell
// interpreter, so the same tasks behave identically on every platform.
package tasks
