package pacman

import "context"

// PackageSource defines the read-only package state queries the news check needs.
// This interface allows for mocking pacman in tests.
type PackageSource interface {
	// Installed returns locally installed packages as name -> version
	Installed(ctx context.Context) (map[string]string, error)

	// Remote returns sync repository packages as name -> version.
	// Implementations may refresh the repository databases first.
	Remote(ctx context.Context) (map[string]string, error)

	// LogFile returns the path of the pacman log file
	LogFile() string
}
