// Package checklist is the in-memory model of a checklist bundle: one
// benchmark identity and version plus the ordered rule evaluations
// recorded against it.
//
// Bundles are immutable once built. Identity, version and rule order are
// fixed by New; accessors hand out copies, and derived bundles (such as the
// output of a reconciliation) are built with WithRules rather than by
// editing an existing value.
package checklist
