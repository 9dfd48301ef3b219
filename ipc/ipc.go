// Package ipc resolves a caller's redirection choice for one of a
// child's three standard streams (NONE/FILE/PIPE/STDOUT/DEVNULL) into
// the concrete handles the spawner must wire.
package ipc

import (
	"github.com/geb0598/coj-go/errkind"
	"github.com/geb0598/coj-go/file"
	"github.com/geb0598/coj-go/pipe"
)

// Option is the caller's redirection choice for one stream.
type Option int

const (
	// None inherits the parent's fd for this stream.
	None Option = iota
	// File redirects the stream to/from a path on disk.
	File
	// Pipe creates an anonymous pipe between parent and child.
	Pipe
	// Stdout is valid only as a stderr destination; it merges stderr
	// into stdout.
	Stdout
	// Devnull is valid only as a destination; opens /dev/null.
	Devnull
)

// Source describes stdin redirection.
type Source struct {
	Option Option
	Path   string // used when Option == File

	// populated by Resolve
	childFile  *file.Endpoint
	parentPipe *pipe.Endpoint // parent keeps the write end
	childPipe  *pipe.Endpoint // handed to the child as the read end
}

// NewSourceNone builds a Source that inherits the parent's stdin.
func NewSourceNone() Source { return Source{Option: None} }

// NewSourceFile builds a Source that reads from path.
func NewSourceFile(path string) Source { return Source{Option: File, Path: path} }

// NewSourcePipe builds a Source backed by a fresh anonymous pipe.
func NewSourcePipe() Source { return Source{Option: Pipe} }

// Validate rejects redirection options that make no sense as a source.
func (s *Source) Validate() *errkind.Error {
	switch s.Option {
	case None, File, Pipe:
		return errkind.NewOk()
	case Stdout, Devnull:
		return errkind.NewInvalidArg("stdin source cannot use option %v", s.Option)
	default:
		return errkind.NewInvalidArg("unknown stdin option %v", s.Option)
	}
}

// Resolve opens whatever backing resource this option requires and
// records it on s: afterwards ParentPipe returns the end the parent
// keeps (nil unless the option is Pipe), and ChildPipe or ChildFile
// the end to be wired into the child.
func (s *Source) Resolve() *errkind.Error {
	switch s.Option {
	case None:
		return errkind.NewOk()
	case File:
		f, err := file.Open(s.Path, pipe.RoleRead)
		if err != nil {
			return errkind.NewInvalidArg("opening stdin file %q: %s", s.Path, err.Error())
		}
		s.childFile = f
		return errkind.NewOk()
	case Pipe:
		r, w, err := pipe.NewPair()
		if err != nil {
			return errkind.NewInvalidArg("creating stdin pipe: %s", err.Error())
		}
		if err := w.MakeNonblocking(); err != nil {
			return errkind.NewInvalidArg("making stdin pipe nonblocking: %s", err.Error())
		}
		s.parentPipe = w
		s.childPipe = r
		return errkind.NewOk()
	default:
		return errkind.NewInvalidArg("unresolvable stdin option %v", s.Option)
	}
}

// ParentPipe returns the parent-retained pipe endpoint, or nil.
func (s *Source) ParentPipe() *pipe.Endpoint { return s.parentPipe }

// ChildPipe returns the child-bound pipe endpoint, or nil.
func (s *Source) ChildPipe() *pipe.Endpoint { return s.childPipe }

// ChildFile returns the opened file endpoint, or nil.
func (s *Source) ChildFile() *file.Endpoint { return s.childFile }

// Destination describes stdout/stderr redirection.
type Destination struct {
	Option Option
	Path   string // used when Option == File

	childFile  *file.Endpoint
	parentPipe *pipe.Endpoint // parent keeps the read end
	childPipe  *pipe.Endpoint // handed to the child as the write end
	devnull    *file.Endpoint
}

// NewDestinationNone builds a Destination that inherits the parent's stream.
func NewDestinationNone() Destination { return Destination{Option: None} }

// NewDestinationFile builds a Destination that writes to path.
func NewDestinationFile(path string) Destination { return Destination{Option: File, Path: path} }

// NewDestinationPipe builds a Destination backed by a fresh anonymous pipe.
func NewDestinationPipe() Destination { return Destination{Option: Pipe} }

// NewDestinationDevnull builds a Destination that discards to /dev/null.
func NewDestinationDevnull() Destination { return Destination{Option: Devnull} }

// NewDestinationStdout builds a stderr Destination that merges into stdout.
// Only legal for the stderr channel; Validate rejects it elsewhere.
func NewDestinationStdout() Destination { return Destination{Option: Stdout} }

// Validate checks option legality. allowStdout is true only when this
// Destination is being used for the stderr channel.
func (d *Destination) Validate(allowStdout bool) *errkind.Error {
	switch d.Option {
	case None, File, Pipe, Devnull:
		return errkind.NewOk()
	case Stdout:
		if allowStdout {
			return errkind.NewOk()
		}
		return errkind.NewInvalidArg("STDOUT redirection is only valid for stderr")
	default:
		return errkind.NewInvalidArg("unknown destination option %v", d.Option)
	}
}

// Resolve opens whatever backing resource this option requires.
func (d *Destination) Resolve() *errkind.Error {
	switch d.Option {
	case None, Stdout:
		return errkind.NewOk()
	case File:
		f, err := file.Open(d.Path, pipe.RoleWrite)
		if err != nil {
			return errkind.NewInvalidArg("opening destination file %q: %s", d.Path, err.Error())
		}
		d.childFile = f
		return errkind.NewOk()
	case Devnull:
		f, err := file.OpenDevNull()
		if err != nil {
			return errkind.NewInvalidArg("opening /dev/null: %s", err.Error())
		}
		d.devnull = f
		return errkind.NewOk()
	case Pipe:
		r, w, err := pipe.NewPair()
		if err != nil {
			return errkind.NewInvalidArg("creating destination pipe: %s", err.Error())
		}
		if err := r.MakeNonblocking(); err != nil {
			return errkind.NewInvalidArg("making destination pipe nonblocking: %s", err.Error())
		}
		d.parentPipe = r
		d.childPipe = w
		return errkind.NewOk()
	default:
		return errkind.NewInvalidArg("unresolvable destination option %v", d.Option)
	}
}

// ParentPipe returns the parent-retained pipe endpoint, or nil.
func (d *Destination) ParentPipe() *pipe.Endpoint { return d.parentPipe }

// ChildPipe returns the child-bound pipe endpoint, or nil.
func (d *Destination) ChildPipe() *pipe.Endpoint { return d.childPipe }

// ChildFile returns the opened destination file endpoint, or nil.
func (d *Destination) ChildFile() *file.Endpoint {
	if d.devnull != nil {
		return d.devnull
	}
	return d.childFile
}
