package docker

import (
	cerrdefs "github.com/containerd/errdefs"
)

// hint returns a one-line suggestion for a daemon error, keyed on its errdefs
// class.
func hint(err error) string {
	switch {
	case cerrdefs.IsNotFound(err):
		return "Check that the container or image exists (try 'docker ps -a' or 'docker images')"
	case cerrdefs.IsUnauthorized(err), cerrdefs.IsPermissionDenied(err):
		return "Check the registry credentials in the task's auth block"
	case cerrdefs.IsConflict(err):
		return "The container is in a conflicting state or the name is already in use"
	case cerrdefs.IsInvalidArgument(err):
		return "Check the option names and values in your task file"
	case cerrdefs.IsUnavailable(err), cerrdefs.IsDeadlineExceeded(err):
		return "Ensure Docker is running and reachable"
	default:
		return "Check Docker daemon logs for details"
	}
}
