// Package commerce wraps the commerce platform's orders API.
//
// ListOrders walks cursor pagination, paces page requests with a token bucket
// and checks every page against an embedded JSON schema before decoding.
// Failures are tagged with the services markers so callers can tell rate
// limiting, timeouts, connection problems and malformed bodies apart.
package commerce
