// Package services defines shared utilities consumed by the pipeline stages
// and the external integrations they call.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs and stage names for logging.
//   - Structured error markers plus the Wrap helper so commerce and sheets
//     failures can be classified (rate limited, timeout, connection,
//     malformed) without string matching.
//
// The commerce and sheets subpackages hold the outbound clients.
package services
