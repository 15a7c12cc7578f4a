package dispatch

import "github.com/mattjoyce/ghost/internal/command"

var windowsActions = map[command.Tag]action{
	command.Lock:     confirm("Workstation locked", "rundll32.exe", "user32.dll,LockWorkStation"),
	command.Shutdown: confirm("Shutdown initiated", "shutdown", "/s", "/t", "0"),
	command.Restart:  confirm("Restart initiated", "shutdown", "/r", "/t", "0"),
	command.KillNet: toggleNetwork(false,
		powershell(`Get-NetAdapter | Where-Object {$_.Status -eq "Up"} | Disable-NetAdapter -Confirm:$false`),
		netsh("disable")),
	command.RestoreNet: toggleNetwork(true,
		powershell(`Get-NetAdapter | Enable-NetAdapter -Confirm:$false`),
		netsh("enable")),
	command.BlockInput:   blockInput,
	command.UnblockInput: unblockInput,
	// 173 is VK_VOLUME_MUTE.
	command.Mute: confirm("Audio muted", powershell(`(New-Object -ComObject WScript.Shell).SendKeys([char]173)`)...),
}

func powershell(script string) []string {
	return []string{"powershell", "-NoProfile", "-NonInteractive", "-Command", script}
}

func netsh(state string) func(string) []string {
	return func(iface string) []string {
		return []string{"netsh", "interface", "set", "interface", iface, "admin=" + state}
	}
}
