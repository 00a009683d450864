package pacman

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// Default locations used by pacman when pacman.conf does not override them
const (
	DefaultConfigFile = "/etc/pacman.conf"
	DefaultDBPath     = "/var/lib/pacman/"
	DefaultLogFile    = "/var/log/pacman.log"
)

// Options holds the [options] values of pacman.conf that the news check reads
type Options struct {
	DBPath  string
	LogFile string
}

// LoadConf reads the [options] section of a pacman.conf file.
// Missing values are filled with pacman's defaults.
func LoadConf(path string) (*Options, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ParseConf(file)
}

// ParseConf parses pacman.conf content from an io.Reader.
// Include directives and repository sections are ignored.
func ParseConf(r io.Reader) (*Options, error) {
	opts := &Options{
		DBPath:  DefaultDBPath,
		LogFile: DefaultLogFile,
	}

	scanner := bufio.NewScanner(r)
	inOptions := false

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			inOptions = strings.Trim(line, "[]") == "options"
			continue
		}

		if !inOptions {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if value == "" {
			continue
		}

		switch key {
		case "DBPath":
			opts.DBPath = value
		case "LogFile":
			opts.LogFile = value
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return opts, nil
}
