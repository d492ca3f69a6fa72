package season

import (
	"fmt"
	"time"
)

// Canonical long-lived branch names.
const (
	BranchMain       = "main"
	BranchDevelop    = "develop"
	BranchSeasonNext = "season/next"
)

const (
	archiveBranchTemplateConstant = "season/previous-%d"
	finalTagTemplateConstant      = "v%d.final"
	releaseTagTemplateConstant    = "v%d.0"
	initTagTemplateConstant       = "v%d.init"
	archiveTagTemplateConstant    = "archive/%d"
	backupTagTemplateConstant     = "backup/pre-transition-%s"
	timestampLayoutConstant       = "20060102-150405"
)

// ArchiveBranchName returns the write-once archive branch for an outgoing season.
func ArchiveBranchName(seasonIdentifier int) string {
	return fmt.Sprintf(archiveBranchTemplateConstant, seasonIdentifier)
}

// FinalTagName returns the tag marking the final state of a season.
func FinalTagName(seasonIdentifier int) string {
	return fmt.Sprintf(finalTagTemplateConstant, seasonIdentifier)
}

// ReleaseTagName returns the tag marking the first release of a season.
func ReleaseTagName(seasonIdentifier int) string {
	return fmt.Sprintf(releaseTagTemplateConstant, seasonIdentifier)
}

// InitTagName returns the tag marking the initialization point of a season.
func InitTagName(seasonIdentifier int) string {
	return fmt.Sprintf(initTagTemplateConstant, seasonIdentifier)
}

// ArchiveTagName returns the archive marker tag for an outgoing season.
func ArchiveTagName(seasonIdentifier int) string {
	return fmt.Sprintf(archiveTagTemplateConstant, seasonIdentifier)
}

// BackupTagName returns the rollback marker tag for a transition started at the
// provided moment.
func BackupTagName(startedAt time.Time) string {
	return fmt.Sprintf(backupTagTemplateConstant, startedAt.Format(timestampLayoutConstant))
}

// FormatTimestamp renders a moment in the compact form shared by backup tags
// and report file names.
func FormatTimestamp(moment time.Time) string {
	return moment.Format(timestampLayoutConstant)
}
