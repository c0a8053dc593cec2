// Package cmd provides a transport-agnostic command core: a command is something
// with a name, description, and Run(ctx, invocation). How messages reach it
// (Discord prefix messages, CLI, tests) is defined by adapters that wrap this.
package cmd

import "context"

// Invocation carries the input any command runner can pass: the lower-cased
// command name, positional arguments and an opaque payload. Adapters set Data
// to their own context (e.g. the chat message plus reply hook).
type Invocation struct {
	Name string
	Args []string
	Data any
}

// Arg returns the i-th positional argument or "" when absent.
func (inv *Invocation) Arg(i int) string {
	if inv == nil || i < 0 || i >= len(inv.Args) {
		return ""
	}
	return inv.Args[i]
}

// Command is the universal contract: identity plus execution. Precondition
// checks and transport-specific replies stay in the commands and adapters.
type Command interface {
	Name() string
	Description() string
	Run(ctx context.Context, inv *Invocation) error
}
