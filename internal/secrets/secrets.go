// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads provider API keys from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
//
// Supported key files: tavily-api-key, brave-api-key, google-api-key,
// openai-api-key, anthropic-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/newsdesk/pkg/types"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged as warnings but do not abort.
func Load(dir string, log *zap.Logger) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
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
			log.Warn("could not read secret", zap.String("name", name), zap.Error(err))
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Apply fills credentials left empty by the environment from loaded secret
// files. Values already set win. It returns the names of the secrets used,
// sorted, so callers can report them without printing values.
func Apply(creds *types.Credentials, secrets map[string]string) []string {
	fields := map[string]*string{
		"tavily-api-key":    &creds.TavilyAPIKey,
		"brave-api-key":     &creds.BraveAPIKey,
		"google-api-key":    &creds.GoogleAPIKey,
		"openai-api-key":    &creds.OpenAIAPIKey,
		"anthropic-api-key": &creds.AnthropicAPIKey,
	}

	var used []string
	for name, dst := range fields {
		v, ok := secrets[name]
		if !ok || *dst != "" {
			continue
		}
		*dst = v
		used = append(used, name)
	}
	sort.Strings(used)
	return used
}
