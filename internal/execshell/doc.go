// Package execshell provides structured helpers for invoking external tools.
//
// ShellExecutor wraps a CommandRunner with logging and lifecycle observers, and
// OSCommandRunner executes processes through os/exec. gitsync runs every git
// mutation through these types so tests can substitute scripted runners.
package execshell
