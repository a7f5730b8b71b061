// Package main hosts the auditionsync CLI.
//
// `auditionsync sync` runs one pipeline pass against the commerce API and the
// configured spreadsheets and prints the summary. `runs` lists the run
// ledger, and `config` scaffolds and checks the TOML configuration. The heavy
// lifting lives in internal/runner and internal/pipeline; commands here only
// resolve configuration and render output.
package main
