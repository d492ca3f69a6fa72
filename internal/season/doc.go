// Package season defines the season value model shared by the lifecycle
// services: season identifiers and their ordering invariant, the canonical
// branch and tag naming scheme, and the repository-scoped configuration store
// that records which seasons are live.
package season
