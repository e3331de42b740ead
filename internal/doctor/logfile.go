package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LogFileCheck verifies the diagnostic log can be written.
type LogFileCheck struct {
	Path string
}

func (c *LogFileCheck) Name() string     { return "log_file" }
func (c *LogFileCheck) Category() string { return "LOGGING" }

func (c *LogFileCheck) Run(_ context.Context) CheckResult {
	dir := filepath.Dir(c.Path)
	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("Log directory %s does not exist yet", dir),
			Suggestion: "It is created on first run; doctor --fix creates it now",
			Fixable:    true,
		}
	case err != nil:
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusFail,
			Message: fmt.Sprintf("Cannot inspect %s: %v", dir, err),
		}
	case !info.IsDir():
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("%s is not a directory", dir),
			Suggestion: "Point log.file somewhere else",
		}
	}

	f, err := os.OpenFile(c.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Log file %s is not writable", c.Path),
			Suggestion: "Fix the permissions or set log.file (PLANTDASH_LOG_FILE)",
		}
	}
	_ = f.Close()

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: "Logging to " + c.Path,
	}
}

// Fix creates the log directory.
func (c *LogFileCheck) Fix() error {
	return os.MkdirAll(filepath.Dir(c.Path), 0o755)
}
