// Package grid maps a storage unit's geometry to discrete bottle slots.
//
// Everything here is pure: callers pass a snapshot of the unit and its
// bottles, and get back slots or verdicts. Nothing is cached between calls
// and no input is mutated.
package grid
