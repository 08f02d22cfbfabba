// Package engagement implements the answer engagement state machines.
//
// VoteLedger drives the per-(user, answer) tri-state vote transitions and
// AcceptanceController drives the single-accepted-answer-per-question flag.
// Both delegate atomicity to the stores and layer policy on top: validation,
// acceptance notifications, and metrics.
package engagement
