// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads notification credentials from a directory of
// plain-text files. Each file holds one secret: the filename is the key name
// and the trimmed file contents are the value.
//
// Supported key files: email-username, email-password, mailgun-api-key,
// mailgun-domain.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// DefaultDir is where the CLI looks for secret files.
const DefaultDir = ".secrets"

// Secrets maps secret file names to their values.
type Secrets map[string]string

// Load reads all files in dir. A missing directory is not an error; Load
// returns an empty set. Unreadable files are logged and skipped.
func Load(dir string, logger *zap.Logger) (Secrets, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(Secrets)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("could not read secret", zap.String("name", name), zap.Error(err))
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}
	return secrets, nil
}

// FileName converts an environment-style key such as MAILGUN_API_KEY to its
// file name, mailgun-api-key.
func FileName(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), "_", "-")
}

// Lookup returns the secret for an environment-style key.
func (s Secrets) Lookup(key string) (string, bool) {
	v, ok := s[FileName(key)]
	return v, ok
}
