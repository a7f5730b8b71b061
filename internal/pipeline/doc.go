// Package pipeline sequences one sync run: fetch orders, build profiles,
// rewrite the report and, when configured, update the recruitment sheet.
//
// Stages communicate through result.Result values. The first Failure ends the
// run and is returned exactly as the stage produced it. Sheets written by
// earlier stages are not rolled back.
package pipeline
