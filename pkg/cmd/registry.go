package cmd

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrUnknownCommand is returned by Dispatch when no command matches the name.
var ErrUnknownCommand = errors.New("unknown command")

// Registry stores commands by exact name and dispatches invocations to them.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds commands, replacing any previous command with the same name.
func (r *Registry) Register(cs ...Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range cs {
		r.commands[c.Name()] = c
	}
}

// Get returns the command with the given name.
func (r *Registry) Get(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.commands[name]
	return c, ok
}

// GetAll returns all registered commands, sorted by name.
func (r *Registry) GetAll() []Command {
	r.mu.RLock()
	list := make([]Command, 0, len(r.commands))
	for _, c := range r.commands {
		list = append(list, c)
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		return list[i].Name() < list[j].Name()
	})
	return list
}

// Dispatch runs the command named by inv.Name.
func (r *Registry) Dispatch(ctx context.Context, inv *Invocation) error {
	c, ok := r.Get(inv.Name)
	if !ok {
		return ErrUnknownCommand
	}
	return c.Run(ctx, inv)
}
