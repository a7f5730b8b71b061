// Package notifications posts sync outcomes to an ntfy topic.
//
// When no topic is configured NewService returns a no-op implementation, so
// callers never branch on whether notifications are enabled. Delivery
// failures are returned to the caller, which logs them; they never change the
// outcome of a run.
package notifications
