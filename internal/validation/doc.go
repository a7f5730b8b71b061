// Package validation holds the structural checks run against commerce orders
// before parsing and against profiles after merging.
//
// List-returning checks (ValidateSingleOrder, ValidateLineItem,
// ValidateCustomFields, ValidateProfile) collect every problem they find and
// are composed by the Result-returning checks, so one bad field never hides
// another.
package validation
