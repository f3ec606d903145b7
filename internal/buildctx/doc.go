// Package buildctx streams docker build contexts as tar archives.
package buildctx
