// Package docker wraps the moby client for dockertask.
//
// Client addresses containers and exec processes by ID and decodes the opaque
// per-task option maps onto the moby option structs. It is the daemon engine
// behind the command dispatcher.
package docker
