package tasks

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.starlark.net/starlark"
	"mvdan.cc/sh/v3/syntax"
)

// Command is a single step of a task: either a shell script or a reference to
// another task.
type Command interface {
	// Ref returns the referenced task, or nil for shell commands.
	Ref() *Task
	// ShellStmts parses the command into shell statements, or returns nil
	// for task references.
	ShellStmts(parser *syntax.Parser) ([]*syntax.Stmt, error)
}

// ScriptCommand is a shell snippet attached to a task.
type ScriptCommand struct {
	TaskName string
	Content  string
	Index    int
}

func (s ScriptCommand) Ref() *Task { return nil }

func (s ScriptCommand) ShellStmts(parser *syntax.Parser) ([]*syntax.Stmt, error) {
	result, err := parser.Parse(strings.NewReader(s.Content), fmt.Sprintf("%s:%d", s.TaskName, s.Index))
	if err != nil {
		return nil, eris.Wrapf(err, "failed to parse command %s", s.Content)
	}

	return result.Stmts, nil
}

// TaskRef makes one task run another as one of its steps.
type TaskRef struct {
	Task *Task
}

func (t TaskRef) Ref() *Task { return t.Task }

func (t TaskRef) ShellStmts(*syntax.Parser) ([]*syntax.Stmt, error) { return nil, nil }

// Task contains the processed values passed to task() by the task script.
type Task struct {
	Env          map[string]string
	Short        string
	Desc         string
	Base         string
	Inputs       []string
	Deps         []string
	SkipIfExists []string
	Outputs      []string
	Cmds         []Command
	Hidden       bool
}

// TaskList maps short names to each declared task.
type TaskList map[string]*Task

// ScriptOption is an option() declared by the task script.
type ScriptOption struct {
	DefaultValue starlark.String
	Help         string
}

func (o ScriptOption) Default() string {
	return o.DefaultValue.GoString()
}

// Implement starlark.Value for *Task so tasks can be referenced from other
// task declarations.

func (t *Task) String() string {
	return fmt.Sprintf("<Task %s: %s>", t.Short, t.Desc)
}

func (t *Task) Type() string { return "task" }

// Freeze doesn't do anything since tasks are immutable anyway.
func (t *Task) Freeze() {}

func (t *Task) Truth() starlark.Bool { return starlark.True }

func (t *Task) Hash() (uint32, error) {
	return 0, eris.New("task is not a hashable type")
}
