package transition

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/seasonforge/seasonctl/internal/season"
)

const (
	reportDirectoryRequiredMessageConstant = "report directory must be provided"
	reportFileNameTemplateConstant         = "season-transition-%s.md"
	reportFilePermissionsConstant          = 0o644
	reportDirectoryPermissionsConstant     = 0o755
	reportMarshalErrorTemplateConstant     = "unable to render transition record: %w"
	reportWriteErrorTemplateConstant       = "unable to write transition report %s: %w"
	reportDirectoryErrorTemplateConstant   = "unable to create report directory %s: %w"

	reportTitleTemplateConstant           = "# Season Transition %d -> %d\n\n"
	reportModeLineTemplateConstant        = "Mode: %s\n\n"
	reportModeDryRunConstant              = "dry-run"
	reportModeExecutedConstant            = "executed"
	reportSeasonsHeaderConstant           = "## Seasons\n\n"
	reportSeasonLineTemplateConstant      = "- %s: %d\n"
	reportPhasesHeaderConstant            = "\n## Phases\n\n"
	reportPhaseLineTemplateConstant       = "- [%s] %s\n"
	reportPhaseDetailTemplateConstant     = "- [%s] %s: %s\n"
	reportTagsHeaderConstant              = "\n## Tags Created\n\n"
	reportTagLineTemplateConstant         = "- %s\n"
	reportNoTagsLineConstant              = "- none\n"
	reportPushHeaderConstant              = "\n## Push Summary\n\n"
	reportPushLineTemplateConstant        = "- %s: %s (force: %t)\n"
	reportPushFailureLineTemplateConstant = "- %s: %s (force: %t, kind: %s) %s\n"
	reportNoPushesLineConstant            = "- no pushes attempted\n"
	reportRollbackHeaderConstant          = "\n## Rollback\n\n"
	reportRollbackTemplateConstant        = "To restore the pre-transition state:\n\n    git reset --hard %s\n"
	reportNoBackupLineConstant            = "No backup tag was created during this run.\n"
	reportRecordHeaderConstant            = "\n## Record\n\n"
	reportYamlFenceOpenConstant           = "```yaml\n"
	reportYamlFenceCloseConstant          = "```\n"

	reportCurrentSeasonLabelConstant = "current"
	reportNextSeasonLabelConstant    = "next"
	reportNewNextSeasonLabelConstant = "new next"
)

// ErrReportDirectoryRequired indicates the writer was created without a directory.
var ErrReportDirectoryRequired = errors.New(reportDirectoryRequiredMessageConstant)

// MarkdownReportWriter renders transition records into timestamped Markdown
// files with an embedded machine-readable YAML record.
type MarkdownReportWriter struct {
	directory string
}

// NewMarkdownReportWriter constructs a writer targeting the provided directory.
func NewMarkdownReportWriter(directory string) (*MarkdownReportWriter, error) {
	trimmedDirectory := strings.TrimSpace(directory)
	if len(trimmedDirectory) == 0 {
		return nil, ErrReportDirectoryRequired
	}
	return &MarkdownReportWriter{directory: trimmedDirectory}, nil
}

// Write renders the record and returns the path of the written report.
func (writer *MarkdownReportWriter) Write(record Record) (string, error) {
	reportContent, renderError := renderReport(record)
	if renderError != nil {
		return "", renderError
	}

	if directoryError := os.MkdirAll(writer.directory, reportDirectoryPermissionsConstant); directoryError != nil {
		return "", fmt.Errorf(reportDirectoryErrorTemplateConstant, writer.directory, directoryError)
	}

	reportFileName := fmt.Sprintf(reportFileNameTemplateConstant, season.FormatTimestamp(record.StartedAt))
	reportPath := filepath.Join(writer.directory, reportFileName)
	if writeError := os.WriteFile(reportPath, []byte(reportContent), reportFilePermissionsConstant); writeError != nil {
		return "", fmt.Errorf(reportWriteErrorTemplateConstant, reportPath, writeError)
	}
	return reportPath, nil
}

func renderReport(record Record) (string, error) {
	encodedRecord, marshalError := yaml.Marshal(record)
	if marshalError != nil {
		return "", fmt.Errorf(reportMarshalErrorTemplateConstant, marshalError)
	}

	var reportBuilder strings.Builder
	reportBuilder.WriteString(fmt.Sprintf(reportTitleTemplateConstant, record.CurrentSeason, record.NextSeason))
	reportMode := reportModeExecutedConstant
	if record.DryRun {
		reportMode = reportModeDryRunConstant
	}
	reportBuilder.WriteString(fmt.Sprintf(reportModeLineTemplateConstant, reportMode))

	reportBuilder.WriteString(reportSeasonsHeaderConstant)
	reportBuilder.WriteString(fmt.Sprintf(reportSeasonLineTemplateConstant, reportCurrentSeasonLabelConstant, record.CurrentSeason))
	reportBuilder.WriteString(fmt.Sprintf(reportSeasonLineTemplateConstant, reportNextSeasonLabelConstant, record.NextSeason))
	reportBuilder.WriteString(fmt.Sprintf(reportSeasonLineTemplateConstant, reportNewNextSeasonLabelConstant, record.NewNextSeason))

	reportBuilder.WriteString(reportPhasesHeaderConstant)
	for _, phaseOutcome := range record.Phases {
		if len(phaseOutcome.Detail) > 0 {
			reportBuilder.WriteString(fmt.Sprintf(reportPhaseDetailTemplateConstant, phaseOutcome.Status, phaseOutcome.Name, phaseOutcome.Detail))
			continue
		}
		reportBuilder.WriteString(fmt.Sprintf(reportPhaseLineTemplateConstant, phaseOutcome.Status, phaseOutcome.Name))
	}

	reportBuilder.WriteString(reportTagsHeaderConstant)
	if len(record.TagsCreated) == 0 {
		reportBuilder.WriteString(reportNoTagsLineConstant)
	}
	for _, createdTag := range record.TagsCreated {
		reportBuilder.WriteString(fmt.Sprintf(reportTagLineTemplateConstant, createdTag))
	}

	reportBuilder.WriteString(reportPushHeaderConstant)
	if len(record.PushResults) == 0 {
		reportBuilder.WriteString(reportNoPushesLineConstant)
	}
	for _, pushResult := range record.PushResults {
		if pushResult.Status == PushStatusFailed {
			reportBuilder.WriteString(fmt.Sprintf(reportPushFailureLineTemplateConstant, pushResult.BranchName, pushResult.Status, pushResult.UsedForce, pushResult.FailureKind, pushResult.Diagnostic))
			continue
		}
		reportBuilder.WriteString(fmt.Sprintf(reportPushLineTemplateConstant, pushResult.BranchName, pushResult.Status, pushResult.UsedForce))
	}

	reportBuilder.WriteString(reportRollbackHeaderConstant)
	if record.BackupCreated {
		reportBuilder.WriteString(fmt.Sprintf(reportRollbackTemplateConstant, record.BackupTag))
	} else {
		reportBuilder.WriteString(reportNoBackupLineConstant)
	}

	reportBuilder.WriteString(reportRecordHeaderConstant)
	reportBuilder.WriteString(reportYamlFenceOpenConstant)
	reportBuilder.Write(encodedRecord)
	reportBuilder.WriteString(reportYamlFenceCloseConstant)

	return reportBuilder.String(), nil
}
