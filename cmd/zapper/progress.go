package main

import (
	"time"

	"github.com/briandowns/spinner"
)

// withSpinner runs fn with a terminal spinner displayed, unless quiet mode
// is on. The spinner always stops before returning, even if fn errors.
func withSpinner(suffix string, fn func() error) error {
	if flagQuiet {
		return fn()
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + suffix
	s.Start()
	defer s.Stop()
	return fn()
}
