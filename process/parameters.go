package process

import "github.com/geb0598/coj-go/ipc"

// Options bags up the three redirection choices for a new Process:
// an optional stdin source and optional stdout/stderr destinations.
// All default to ipc.None (inherit the parent's stream).
type Options struct {
	Stdin  ipc.Source
	Stdout ipc.Destination
	Stderr ipc.Destination
}

// Option mutates Options; passed variadically to New.
type Option func(*Options)

func defaultOptions() Options {
	return Options{
		Stdin:  ipc.NewSourceNone(),
		Stdout: ipc.NewDestinationNone(),
		Stderr: ipc.NewDestinationNone(),
	}
}

// WithStdin sets the stdin redirection.
func WithStdin(s ipc.Source) Option {
	return func(o *Options) { o.Stdin = s }
}

// WithStdout sets the stdout redirection.
func WithStdout(d ipc.Destination) Option {
	return func(o *Options) { o.Stdout = d }
}

// WithStderr sets the stderr redirection.
func WithStderr(d ipc.Destination) Option {
	return func(o *Options) { o.Stderr = d }
}
