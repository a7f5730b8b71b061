// Package result provides the success/failure value every pipeline stage
// returns.
//
// A Result is either Success(data) or Failure(errors...). Stages never panic
// or return raw errors across their boundary; the orchestrator chains them with
// AndThen and stops at the first Failure, returning its messages verbatim.
package result
