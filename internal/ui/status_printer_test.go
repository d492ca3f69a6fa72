package ui_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seasonforge/seasonctl/internal/ui"
)

func TestStatusPrinterWritesMarkers(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	printer := ui.NewStatusPrinter(outputBuffer)

	printer.Phase("validate")
	printer.Step("checking required branches")
	printer.Success("validation complete")
	printer.Warning("remote unreachable")
	printer.Failure("merge failed")
	printer.DryRun("would reset main to season/next")

	renderedOutput := outputBuffer.String()
	require.Contains(testInstance, renderedOutput, "validate")
	require.Contains(testInstance, renderedOutput, "checking required branches")
	require.Contains(testInstance, renderedOutput, "validation complete")
	require.Contains(testInstance, renderedOutput, "remote unreachable")
	require.Contains(testInstance, renderedOutput, "merge failed")
	require.Contains(testInstance, renderedOutput, "would reset main to season/next")
}

func TestStatusPrinterToleratesNilWriter(testInstance *testing.T) {
	printer := ui.NewStatusPrinter(nil)
	require.NotPanics(testInstance, func() {
		printer.Phase("validate")
		printer.Success("done")
	})
}
