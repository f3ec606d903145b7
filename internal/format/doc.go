// Package format renders daemon results for the terminal: the ps table and the
// repainting stats view.
package format
