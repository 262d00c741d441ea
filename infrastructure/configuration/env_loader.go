package configuration

import (
	"bufio"
	"os"
	"strings"

	"nosbot/infrastructure/logger"
)

// LoadEnvFromFile reads KEY=VALUE lines from the given files and sets any
// variable not already present in the process environment. OS env always
// wins; files only fill gaps.
func LoadEnvFromFile(paths ...string) {
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			continue
		}

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			key, value, ok := strings.Cut(line, "=")
			if !ok {
				continue
			}
			key = strings.TrimSpace(key)
			value = strings.Trim(strings.TrimSpace(value), `"'`)
			if key == "" || os.Getenv(key) != "" {
				continue
			}
			if err := os.Setenv(key, value); err != nil {
				logger.GetLogger().WithField("key", key).Warn("Failed to set env var from file")
			}
		}
		_ = f.Close()
	}
}
