// Package events defines the orchestration events emitted on the event bus.
//
// Available event types:
//   - OptimizationEvent: one optimizer run, successful or not
//   - ProviderFailureEvent: an isolated deriver or component failure
//   - DuplicateComponentEvent: a component registration replaced another
//   - CommandEvent: delivery result of one device's commands
package events
