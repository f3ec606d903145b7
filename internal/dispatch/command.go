package dispatch

import "strings"

// Command names one operation in the closed task vocabulary.
type Command string

const (
	CommandRun             Command = "run"
	CommandPull            Command = "pull"
	CommandPush            Command = "push"
	CommandBuild           Command = "build"
	CommandStop            Command = "stop"
	CommandStart           Command = "start"
	CommandKill            Command = "kill"
	CommandPs              Command = "ps"
	CommandRm              Command = "rm"
	CommandInspect         Command = "inspect"
	CommandExec            Command = "exec"
	CommandRestart         Command = "restart"
	CommandLogs            Command = "logs"
	CommandStats           Command = "stats"
	CommandTag             Command = "tag"
	CommandCreateContainer Command = "create-container"
)

// Vocabulary lists every supported command.
var Vocabulary = []Command{
	CommandRun,
	CommandPull,
	CommandPush,
	CommandBuild,
	CommandStop,
	CommandStart,
	CommandKill,
	CommandPs,
	CommandRm,
	CommandInspect,
	CommandExec,
	CommandRestart,
	CommandLogs,
	CommandStats,
	CommandTag,
	CommandCreateContainer,
}

// ParseCommand validates name against the vocabulary. An empty name is an
// invalid invocation; any other unknown name is an UnsupportedCommandError.
func ParseCommand(name string) (Command, error) {
	if strings.TrimSpace(name) == "" {
		return "", invalid("no command supplied")
	}

	for _, command := range Vocabulary {
		if string(command) == name {
			return command, nil
		}
	}

	return "", &UnsupportedCommandError{Command: name}
}

func (c Command) String() string {
	return string(c)
}

func vocabularyList() string {
	names := make([]string, len(Vocabulary))
	for i, command := range Vocabulary {
		names[i] = string(command)
	}
	return strings.Join(names, ", ")
}
