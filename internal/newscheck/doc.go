// Package newscheck correlates archlinux.org news with pending package updates.
//
// The package implements:
//   - News index parsing into articles (CSS or XPath row extraction)
//   - Last full system upgrade detection from pacman.log
//   - Correlation of articles with outdated package names
//   - The Checker that wires package state, log and news index together
//
// Usage:
//
//	source := pacman.NewRunner(pacman.RunnerConfig{Refresh: true, Fakeroot: "fakeroot"})
//	checker, err := newscheck.NewChecker(source)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	report, err := checker.Run(ctx)
package newscheck
