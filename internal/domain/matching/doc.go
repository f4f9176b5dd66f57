// Package matching implements the placement matching algorithm: weighted
// match scoring for (student, organization) pairs and a capacity-constrained
// deferred acceptance engine that converts per-pair scores into an
// assignment, plus a validator for checking an assignment's structural
// integrity.
//
// Everything in this package is pure computation over an in-memory
// population snapshot. Loading the population and persisting results belong
// to the service and store layers.
package matching
