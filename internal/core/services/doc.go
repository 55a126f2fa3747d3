// Package services implements the driving port interfaces.
// Services contain the core business logic: query normalisation, row
// matching, the resumable chunk scanner, recipe formatting and the
// conversation state machine. They orchestrate calls to driven ports
// (adapters) and are pure Go with no external dependencies.
package services
