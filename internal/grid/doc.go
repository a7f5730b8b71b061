// Package grid builds sheet row lists whose formatting metadata is recorded
// at the moment each row is appended, so row content and row classes cannot
// drift apart.
package grid
