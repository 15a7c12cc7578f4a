// Package command classifies raw command strings into the closed set of
// well-known agent actions, with free text falling through to the shell.
package command

import "slices"

// Tag identifies a well-known action. Shell is the default variant for
// anything that is not a well-known tag.
type Tag string

const (
	Lock         Tag = "lock"
	Shutdown     Tag = "shutdown"
	Restart      Tag = "restart"
	KillNet      Tag = "kill_net"
	RestoreNet   Tag = "restore_net"
	BlockInput   Tag = "block_input"
	UnblockInput Tag = "unblock_input"
	Mute         Tag = "mute"

	Shell Tag = "shell"
)

var wellKnown = []Tag{
	Lock,
	Shutdown,
	Restart,
	KillNet,
	RestoreNet,
	BlockInput,
	UnblockInput,
	Mute,
}

// Tags returns the well-known tags in declaration order.
func Tags() []Tag {
	return slices.Clone(wellKnown)
}

// WellKnown reports whether t is one of the dedicated host actions.
func (t Tag) WellKnown() bool {
	return slices.Contains(wellKnown, t)
}

func (t Tag) String() string { return string(t) }

// Command is a single parsed request. Raw keeps the original text so the
// shell variant can run it verbatim.
type Command struct {
	Tag Tag
	Raw string
}

// Parse classifies raw. Matching is exact and case-sensitive: "Lock" or
// "lock " are shell commands, not the lock action. The literal "shell" is
// also treated as shell text since it is not a well-known tag.
func Parse(raw string) Command {
	if t := Tag(raw); t.WellKnown() {
		return Command{Tag: t, Raw: raw}
	}
	return Command{Tag: Shell, Raw: raw}
}

// IsShell reports whether the command takes the generic fallback path.
func (c Command) IsShell() bool { return c.Tag == Shell }
