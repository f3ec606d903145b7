package dispatch

import (
	"io"

	"github.com/ryanmoran/dockertask/internal"
	"github.com/ryanmoran/dockertask/internal/format"
)

// Invocation carries the resolved arguments of one command. Which fields are
// required depends on the command.
type Invocation struct {
	// ID identifies the container for lifecycle, inspect, exec, logs and stats.
	ID string
	// Image and Cmd are the image and command for run.
	Image string
	Cmd   []string
	// RepoTag is the image reference for pull.
	RepoTag string
	// Name is the image for push and the source image for tag.
	Name string
	// Context and Files are the build context directory and the files sent
	// from it.
	Context string
	Files   []string

	// Columns projects ps output. ColumnOptions controls table drawing.
	Columns       []Column
	ColumnOptions format.TableOptions

	// Options are passed through to the daemon call. Auth holds registry
	// credentials for push. Daemon overrides the daemon connection.
	Options internal.Options
	Auth    internal.Options
	Daemon  internal.Options

	// ContainerName names containers created by run and create-container
	// when Options carry no name.
	ContainerName string

	// Output receives run, ps, inspect, logs and stats output. Nil means
	// the process's standard output.
	Output io.Writer
}

func (inv Invocation) createOptions() internal.Options {
	if inv.ContainerName == "" {
		return inv.Options
	}
	if _, ok := inv.Options.Lookup("name"); ok {
		return inv.Options
	}
	return inv.Options.Merge(internal.Options{"name": inv.ContainerName})
}
