// Package textutil provides the small string helpers shared by record
// parsing, recruitment matching and file naming.
//
// The primary use cases are:
//   - Splitting a single "Name" answer into first and last names
//   - Building case-insensitive person keys for name matching
//   - Title-casing product-derived labels for display
//   - Reducing run IDs to short tokens for log file names
package textutil
