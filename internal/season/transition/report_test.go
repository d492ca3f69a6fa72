package transition_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/seasonforge/seasonctl/internal/execshell"
	"github.com/seasonforge/seasonctl/internal/season/transition"
)

func TestMarkdownReportWriterRequiresDirectory(testInstance *testing.T) {
	writer, creationError := transition.NewMarkdownReportWriter("  ")
	require.ErrorIs(testInstance, creationError, transition.ErrReportDirectoryRequired)
	require.Nil(testInstance, writer)
}

func TestMarkdownReportWriterWritesTimestampedReport(testInstance *testing.T) {
	reportDirectory := testInstance.TempDir()
	writer, creationError := transition.NewMarkdownReportWriter(reportDirectory)
	require.NoError(testInstance, creationError)

	record := transition.Record{
		StartedAt:      testStartMoment,
		RemoteName:     fakeRemoteNameConstant,
		CurrentSeason:  2025,
		NextSeason:     2026,
		NewNextSeason:  2027,
		BackupTag:      "backup/pre-transition-20260830-120000",
		BackupCreated:  true,
		Phases: []transition.PhaseOutcome{
			{Name: "Validate", Status: "completed"},
			{Name: "Push", Status: "warning", Detail: "push phase finished with 1 failure(s)"},
		},
		TagsCreated: []string{"v2025.final", "archive/2025", "v2026.0", "v2027.init"},
		PushResults: []transition.PushResult{
			{BranchName: "main", Status: transition.PushStatusPushed, UsedForce: true},
			{BranchName: "season/next", Status: transition.PushStatusFailed, FailureKind: execshell.GitFailureNonFastForward, Diagnostic: "rejected"},
		},
		PushFailureCount: 1,
	}

	reportPath, writeError := writer.Write(record)
	require.NoError(testInstance, writeError)
	require.Equal(testInstance, filepath.Join(reportDirectory, "season-transition-20260830-120000.md"), reportPath)

	reportBytes, readError := os.ReadFile(reportPath)
	require.NoError(testInstance, readError)
	reportContent := string(reportBytes)

	require.Contains(testInstance, reportContent, "# Season Transition 2025 -> 2026")
	require.Contains(testInstance, reportContent, "- [completed] Validate")
	require.Contains(testInstance, reportContent, "- [warning] Push: push phase finished with 1 failure(s)")
	require.Contains(testInstance, reportContent, "- v2025.final")
	require.Contains(testInstance, reportContent, "git reset --hard backup/pre-transition-20260830-120000")
	require.Contains(testInstance, reportContent, "kind: non_fast_forward")

	yamlBlockStart := strings.Index(reportContent, "```yaml\n")
	require.GreaterOrEqual(testInstance, yamlBlockStart, 0)
	yamlBlock := reportContent[yamlBlockStart+len("```yaml\n"):]
	yamlBlockEnd := strings.Index(yamlBlock, "```")
	require.GreaterOrEqual(testInstance, yamlBlockEnd, 0)

	var decodedRecord transition.Record
	require.NoError(testInstance, yaml.Unmarshal([]byte(yamlBlock[:yamlBlockEnd]), &decodedRecord))
	require.Equal(testInstance, record.CurrentSeason, decodedRecord.CurrentSeason)
	require.Equal(testInstance, record.BackupTag, decodedRecord.BackupTag)
	require.Equal(testInstance, record.PushFailureCount, decodedRecord.PushFailureCount)
	require.Len(testInstance, decodedRecord.PushResults, 2)
}
