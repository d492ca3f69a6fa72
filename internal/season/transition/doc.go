// Package transition implements the season transition: a strictly ordered
// ten-phase procedure that finalizes and archives the current season, promotes
// the next-season integration branch into production, reinitializes the next
// track, advances the persisted season configuration, and reconciles the
// rewritten branches with the remote through a divergence-aware push engine.
//
// Phases one through eight fail fast and point the operator at the backup tag
// created before any mutation. Push failures are classified, counted, and
// reported without failing the run; cleanup and report failures are tolerated.
package transition
