package utils

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// FindProjectRoot walks up from the working directory to the nearest go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

// LoadEnv loads the project-root .env in development checkouts and falls
// back to a .env next to the binary's working directory otherwise. A missing
// file is not an error worth surfacing; callers treat the result as advisory.
func LoadEnv() error {
	if root, err := FindProjectRoot(); err == nil {
		return godotenv.Load(filepath.Join(root, ".env"))
	}
	return godotenv.Load()
}
