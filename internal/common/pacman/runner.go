// Package pacman reads package state from the pacman binary and its configuration.
package pacman

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

var (
	ErrPacmanCommand = errors.New("pacman command failed")
	ErrRefreshFailed = errors.New("failed to refresh sync databases")
)

// RunnerConfig holds the explicit paths and binaries a Runner works with.
// Nothing is looked up from the environment.
type RunnerConfig struct {
	// Binary is the pacman executable (default: "pacman")
	Binary string
	// Fakeroot wraps the database refresh so it works without root; empty disables it
	Fakeroot string
	// ConfigFile is the pacman.conf passed with --config
	ConfigFile string
	// DBPath is the system database directory holding local/ and sync/
	DBPath string
	// LogFile is the pacman log scanned for the last upgrade
	LogFile string
	// Refresh syncs the repository databases into a temporary dbpath before listing
	Refresh bool
	// TempDir is where the temporary dbpath is created (default: os.TempDir())
	TempDir string
}

// commandFunc runs a command and returns its stdout
type commandFunc func(ctx context.Context, name string, args ...string) (string, error)

// Runner executes pacman queries against the configured databases
type Runner struct {
	config RunnerConfig
	run    commandFunc
}

// NewRunner creates a Runner, filling unset fields with pacman defaults
func NewRunner(config RunnerConfig) *Runner {
	if config.Binary == "" {
		config.Binary = "pacman"
	}
	if config.ConfigFile == "" {
		config.ConfigFile = DefaultConfigFile
	}
	if config.DBPath == "" {
		config.DBPath = DefaultDBPath
	}
	if config.LogFile == "" {
		config.LogFile = DefaultLogFile
	}

	return &Runner{
		config: config,
		run:    runCommand,
	}
}

// Config returns the runner configuration after defaults were applied
func (r *Runner) Config() RunnerConfig {
	return r.config
}

// LogFile returns the pacman log file path
func (r *Runner) LogFile() string {
	return r.config.LogFile
}

// runCommand executes a command and returns stdout, wrapping failures with stderr
func runCommand(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if err := cmd.Run(); err != nil {
		stderr := strings.TrimSpace(stderrBuf.String())
		if stderr != "" {
			return "", errors.Join(ErrPacmanCommand, errors.New(stderr))
		}
		return "", errors.Join(ErrPacmanCommand, err)
	}

	return stdoutBuf.String(), nil
}

// Installed returns the local database contents (pacman -Q)
func (r *Runner) Installed(ctx context.Context) (map[string]string, error) {
	stdout, err := r.run(ctx, r.config.Binary, "-Q",
		"--config", r.config.ConfigFile,
		"--dbpath", r.config.DBPath)
	if err != nil {
		return nil, fmt.Errorf("listing installed packages: %w", err)
	}

	return ParseQueryOutput(stdout), nil
}

// Remote returns the sync repository contents (pacman -Sl).
// With Refresh enabled the databases are first synced into a temporary
// dbpath, so the system sync databases are never written.
func (r *Runner) Remote(ctx context.Context) (map[string]string, error) {
	dbPath := r.config.DBPath

	if r.config.Refresh {
		tmpDir, err := os.MkdirTemp(r.config.TempDir, "pacnews-db-*")
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRefreshFailed, err)
		}
		// RemoveAll drops the local/ symlink, never its target
		defer os.RemoveAll(tmpDir)

		if err := r.refresh(ctx, tmpDir); err != nil {
			return nil, err
		}
		dbPath = tmpDir
	}

	stdout, err := r.run(ctx, r.config.Binary, "-Sl",
		"--config", r.config.ConfigFile,
		"--dbpath", dbPath)
	if err != nil {
		return nil, fmt.Errorf("listing repository packages: %w", err)
	}

	return ParseSyncListOutput(stdout), nil
}

// refresh links the local database into dbPath and syncs the repositories there
func (r *Runner) refresh(ctx context.Context, dbPath string) error {
	localDB := filepath.Join(r.config.DBPath, "local")
	if err := os.Symlink(localDB, filepath.Join(dbPath, "local")); err != nil {
		return fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}

	name := r.config.Binary
	args := []string{"-Sy",
		"--config", r.config.ConfigFile,
		"--dbpath", dbPath,
		"--logfile", os.DevNull}
	if r.config.Fakeroot != "" {
		name = r.config.Fakeroot
		args = append([]string{"--", r.config.Binary}, args...)
	}

	if _, err := r.run(ctx, name, args...); err != nil {
		return fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	return nil
}

// ParseQueryOutput parses `pacman -Q` output ("name version" per line)
func ParseQueryOutput(output string) map[string]string {
	packages := make(map[string]string)

	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		packages[fields[0]] = fields[1]
	}

	return packages
}

// ParseSyncListOutput parses `pacman -Sl` output ("repo name version [installed]").
// When a name appears in several repositories the first one listed wins,
// matching pacman's repository priority.
func ParseSyncListOutput(output string) map[string]string {
	packages := make(map[string]string)

	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		if _, seen := packages[fields[1]]; seen {
			continue
		}
		packages[fields[1]] = fields[2]
	}

	return packages
}

// Ensure Runner implements PackageSource interface
var _ PackageSource = (*Runner)(nil)
