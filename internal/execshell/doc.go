// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging via ShellExecutor, exposes OSCommandRunner
// for default process execution, and defines the abstractions used
// throughout seasonctl to run git in a testable manner, including the
// structured classification of git push failures.
package execshell
