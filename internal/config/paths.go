package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// ResolvePaths makes every configured path absolute relative to baseDir.
// An empty baseDir means the current working directory.
func (c *Config) ResolvePaths(baseDir string) error {
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		baseDir = wd
	}

	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(baseDir, p)
	}

	c.Paths.InputDir = resolve(c.Paths.InputDir)
	c.Paths.Workbook = resolve(c.Paths.Workbook)
	c.Paths.OutputDir = resolve(c.Paths.OutputDir)
	c.Paths.LogsDir = resolve(c.Paths.LogsDir)
	if c.Logging.Output != "console" {
		c.Logging.FilePath = resolve(c.Logging.FilePath)
	}
	return nil
}

// EnsureDirectories creates the output and log directories if they don't exist
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.LogsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
