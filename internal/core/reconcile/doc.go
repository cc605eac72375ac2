// Package reconcile holds the pure stages that turn one period's raw light
// table files into a single canonical table.
//
// Stages run in a fixed order: Assemble, ReconcileSources, Filter,
// Corrector.Apply, Normalize. Summarize then feeds the multi period stats.
// None of the stages log or touch storage; callers get reports back and
// decide what to record.
package reconcile
