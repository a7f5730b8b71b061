// Package sheets defines the spreadsheet backend used by the report writer and
// the recruitment updater, and its Google Sheets implementation.
//
// Rows are plain string grids. Reads use the FORMULA render option so a
// read-modify-write round trip preserves formulas recruiters typed into a tab.
package sheets
