package newscheck

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// DefaultMarker is the log text of a full system upgrade invocation
const DefaultMarker = "pacman -Syu"

// LogTimeLayout is the timestamp format of pacman.log lines
const LogTimeLayout = "2006-01-02T15:04:05-0700"

var (
	// ErrSyncNotFound is returned when the log holds no full upgrade line
	ErrSyncNotFound = errors.New("no full system upgrade found in log")
	// ErrMalformedLog is returned when the latest upgrade line has no valid timestamp
	ErrMalformedLog = errors.New("malformed upgrade log line")
)

// FindLastSync returns the timestamp of the most recent line containing marker.
// Only that line is considered: if its timestamp is malformed the search fails
// rather than falling back to an older upgrade.
func FindLastSync(lines []string, marker string) (time.Time, error) {
	if marker == "" {
		marker = DefaultMarker
	}

	for i := len(lines) - 1; i >= 0; i-- {
		line := lines[i]
		if !strings.Contains(line, marker) {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			return time.Time{}, fmt.Errorf("%w: line %d is empty", ErrMalformedLog, i+1)
		}

		stamp := strings.Trim(fields[0], "[]")
		t, err := time.Parse(LogTimeLayout, stamp)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: line %d: %v", ErrMalformedLog, i+1, err)
		}
		return t, nil
	}

	return time.Time{}, fmt.Errorf("%w: marker %q", ErrSyncNotFound, marker)
}

// ReadLogLines reads a log file into lines
func ReadLogLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines, nil
}
