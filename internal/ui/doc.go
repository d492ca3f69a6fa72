// Package ui renders command lifecycle events and transition progress for
// human consumption.
//
// It provides ConsoleCommandEventLogger, an execshell.CommandEventObserver
// that logs readable command descriptions, and StatusPrinter, which writes
// styled phase and status markers to command output.
package ui
