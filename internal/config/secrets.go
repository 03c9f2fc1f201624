package config

import (
	"fmt"
	"os"
	"strings"
)

// ResolveSecret reads a secret using the *_FILE convention.
// envName+"_FILE" wins when set; otherwise the value of envName is returned.
// Neither set yields an empty string.
func ResolveSecret(envName string) (string, error) {
	if envName == "" {
		return "", nil
	}
	fileEnv := envName + "_FILE"
	if filePath := os.Getenv(fileEnv); filePath != "" {
		content, err := os.ReadFile(filePath)
		if err != nil {
			return "", fmt.Errorf("failed to read secret from %s=%s: %w", fileEnv, filePath, err)
		}
		return strings.TrimSpace(string(content)), nil
	}
	return os.Getenv(envName), nil
}

// Password resolves the postgres password from the configured environment variable.
func (c PostgresConfig) Password() (string, error) {
	return ResolveSecret(c.PasswordEnv)
}
