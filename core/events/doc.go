// Package events defines the events emitted on the event bus while serving
// production plan requests.
//
// Available event types:
//   - PlanEvent: a plan was computed, feasible or not
//   - RejectionEvent: a request was refused before planning
package events
