// Package dispatch translates a command string into exactly one host action
// and reports the result as an Outcome.
//
// Well-known tags (lock, shutdown, restart, kill_net, restore_net,
// block_input, unblock_input, mute) map to handlers through a closed,
// per-platform table. Any other text is run through the platform shell and
// its output is reported verbatim.
//
// Key properties:
//   - Stateless across calls; one blocking subprocess at a time
//   - Never panics out and never exits the process: every failure becomes
//     an Outcome
//   - Tags without a handler on the current platform report
//     UnsupportedPlatform and run nothing
//   - block_input is gated by host.PrivilegeContext and becomes a no-op
//     when the process is not elevated
//
// Network toggling is two-tier:
//   - The primary mechanism (PowerShell NetAdapter cmdlets / nmcli) runs first
//   - If it cannot start or exits non-zero, the secondary mechanism
//     (netsh / ip link) runs exactly once per configured interface
//   - Secondary failures are reported in Stderr, never retried
//
// Error taxonomy (Outcome.Kind):
//   - UnsupportedPlatform → no implementation on this host
//   - PrivilegeDenied     → elevation required and absent (no-op)
//   - SubprocessFailure   → the OS call could not start, timed out, or
//     exited non-zero for a fixed-confirmation action
//   - InvalidCommand      → empty command text
package dispatch
