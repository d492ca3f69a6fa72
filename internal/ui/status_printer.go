package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

const (
	phaseMarkerPrefixConstant  = "==>"
	successMarkerConstant      = "OK"
	warningMarkerConstant      = "WARN"
	failureMarkerConstant      = "FAIL"
	dryRunMarkerConstant       = "DRY-RUN"
	markerLineTemplateConstant = "%s %s\n"
	stepLineTemplateConstant   = "    %s\n"
	phaseColorConstant         = "12"
	successColorConstant       = "10"
	warningColorConstant       = "11"
	failureColorConstant       = "9"
	dryRunColorConstant        = "14"
)

var (
	phaseStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(phaseColorConstant))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(successColorConstant))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(warningColorConstant))
	failureStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(failureColorConstant))
	dryRunStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(dryRunColorConstant))
)

// StatusPrinter writes styled phase and status markers to an output stream.
type StatusPrinter struct {
	writer io.Writer
}

// NewStatusPrinter constructs a StatusPrinter targeting the provided writer.
func NewStatusPrinter(writer io.Writer) *StatusPrinter {
	return &StatusPrinter{writer: writer}
}

// Phase announces the start of a named phase.
func (printer *StatusPrinter) Phase(name string) {
	printer.writeLine(phaseStyle.Render(phaseMarkerPrefixConstant), name)
}

// Step records an intermediate action inside the current phase.
func (printer *StatusPrinter) Step(message string) {
	if printer == nil || printer.writer == nil {
		return
	}
	fmt.Fprintf(printer.writer, stepLineTemplateConstant, message)
}

// Success records a completed action.
func (printer *StatusPrinter) Success(message string) {
	printer.writeLine(successStyle.Render(successMarkerConstant), message)
}

// Warning records a tolerated failure or skipped action.
func (printer *StatusPrinter) Warning(message string) {
	printer.writeLine(warningStyle.Render(warningMarkerConstant), message)
}

// Failure records a fatal failure.
func (printer *StatusPrinter) Failure(message string) {
	printer.writeLine(failureStyle.Render(failureMarkerConstant), message)
}

// DryRun records an action that would have run outside dry-run mode.
func (printer *StatusPrinter) DryRun(message string) {
	printer.writeLine(dryRunStyle.Render(dryRunMarkerConstant), message)
}

func (printer *StatusPrinter) writeLine(marker string, message string) {
	if printer == nil || printer.writer == nil {
		return
	}
	fmt.Fprintf(printer.writer, markerLineTemplateConstant, marker, message)
}
