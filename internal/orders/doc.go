// Package orders exposes the raw commerce order shape.
//
// Orders arrive as semi-trusted JSON and are kept as decoded maps so that
// validation can report wrong shapes (a string where a list belongs, a
// missing key) instead of failing during decode. Accessors never panic.
package orders
