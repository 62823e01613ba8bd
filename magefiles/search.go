//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Search builds the binary and runs a news search, e.g. mage search "llm agents".
// Handy for checking search credentials.
func Search(query string) error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "search", "--query", query)
}

// Run builds the binary and runs the whole pipeline once for topic,
// printing progress events.
func Run(topic string) error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "run", "--events", "--topic", topic, "--log-format", "console")
}
