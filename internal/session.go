package internal

import (
	"fmt"
	"math/rand/v2"
)

// Session identifies one invocation. Containers created on behalf of an
// invocation without an explicit name are named after it so they can be found
// with `docker ps --filter name=dockertask-`.
type Session struct {
	task string
	id   uint64
}

// NewSession creates a session for the named task with a random 48-bit
// suffix, wide enough that names left behind by earlier runs do not collide.
func NewSession(task string) Session {
	return Session{task: task, id: rand.Uint64() & 0xffffffffffff}
}

// Task returns the task name the session was created for.
func (s Session) Task() string {
	return s.task
}

// ContainerName returns the default container name, "dockertask-" followed
// by twelve hex digits.
func (s Session) ContainerName() string {
	return fmt.Sprintf("dockertask-%012x", s.id)
}

func (s Session) String() string {
	return fmt.Sprintf("%s#%012x", s.task, s.id)
}
