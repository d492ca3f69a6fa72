// Package initialize creates the two-track season topology: the develop and
// season/next branches, the seeded season configuration, and the next-season
// initialization tag. The procedure is idempotent; rerunning it against an
// initialized repository warns and changes nothing.
package initialize
