// Package permission implements the rule-based authorization engine for
// command dispatch.
//
// Checks consult the acting identity's direct grants first, then evaluate
// an ordered rule store: enabled rules for the requested scope and action,
// highest priority first, where a rule applies when one of its glob
// patterns matches the normalized resource and all of its conditions hold.
// Deny rules short-circuit. Every check produces a Decision and, unless
// disabled, an audit entry in a bounded ring buffer.
package permission
