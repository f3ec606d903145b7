// Package taskfile loads the YAML file that declares named tasks and turns
// each task into a dispatch.Invocation.
//
// A task file maps task names to task objects:
//
//	pull-alpine:
//	  command: pull
//	  repoTag: alpine:3.20
//
//	list:
//	  command: ps
//	  opts: {all: true}
//	  cols:
//	    Id: short-id
//	    Names: first
//	    Image:
//	  colOpts: {style: rounded}
//
// Task order and column order follow the file.
package taskfile
