// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The embed store ingests and searches tool context, the registry owns the
// plugin lifecycle and the dispatcher routes host calls to tool handlers.
// Services are pure Go with no CGO.
package services
