package pacman

import "context"

// MockSource implements PackageSource for testing.
// Each method can be configured with a custom function to control behavior.
type MockSource struct {
	InstalledFunc func(ctx context.Context) (map[string]string, error)
	RemoteFunc    func(ctx context.Context) (map[string]string, error)
	logFile       string
}

// NewMockSource creates a new MockSource reporting the given log file path
func NewMockSource(logFile string) *MockSource {
	return &MockSource{
		logFile: logFile,
	}
}

// Installed returns locally installed packages
func (m *MockSource) Installed(ctx context.Context) (map[string]string, error) {
	if m.InstalledFunc != nil {
		return m.InstalledFunc(ctx)
	}
	return map[string]string{}, nil
}

// Remote returns sync repository packages
func (m *MockSource) Remote(ctx context.Context) (map[string]string, error) {
	if m.RemoteFunc != nil {
		return m.RemoteFunc(ctx)
	}
	return map[string]string{}, nil
}

// LogFile returns the configured log file path
func (m *MockSource) LogFile() string {
	return m.logFile
}

// Ensure MockSource implements PackageSource interface
var _ PackageSource = (*MockSource)(nil)
