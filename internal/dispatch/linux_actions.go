package dispatch

import "github.com/mattjoyce/ghost/internal/command"

// Input blocking has no portable equivalent on Linux and is left out of the
// table, so block_input and unblock_input report UnsupportedPlatform.
var linuxActions = map[command.Tag]action{
	command.Lock:     confirm("Workstation locked", "loginctl", "lock-sessions"),
	command.Shutdown: confirm("Shutdown initiated", "systemctl", "poweroff"),
	command.Restart:  confirm("Restart initiated", "systemctl", "reboot"),
	command.KillNet: toggleNetwork(false,
		[]string{"nmcli", "networking", "off"},
		ipLink("down")),
	command.RestoreNet: toggleNetwork(true,
		[]string{"nmcli", "networking", "on"},
		ipLink("up")),
	command.Mute: confirm("Audio muted", "amixer", "-q", "set", "Master", "mute"),
}

func ipLink(state string) func(string) []string {
	return func(iface string) []string {
		return []string{"ip", "link", "set", "dev", iface, state}
	}
}
