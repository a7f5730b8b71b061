// Package recruitment keeps the recruiter-maintained spreadsheet in step with
// the season's profiles.
//
// Instrument tabs are edited by people, so the updater only touches the
// status, packet, registered and notes cells of rows it can match by name,
// and never adds or removes rows there. Candidates that no recruiter has
// picked up yet are listed on the UNSORTED tab, which is rebuilt from scratch
// on every run. Running the update twice with the same profiles leaves every
// tab unchanged the second time.
package recruitment
