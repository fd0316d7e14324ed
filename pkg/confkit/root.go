package confkit

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/joho/godotenv"
)

const maxWalkDepth = 8

var dotenvOnce sync.Once

// LoadDotenvOnce loads .env files once per process. Variables already set in
// the environment win unless DOTENV_OVERLOAD=1. NO_DOTENV=1 disables loading
// and ENV_FILE names a single file to load instead of searching.
func LoadDotenvOnce() {
	dotenvOnce.Do(loadDotenv)
}

func loadDotenv() {
	if os.Getenv("NO_DOTENV") == "1" {
		return
	}
	load := godotenv.Load
	if os.Getenv("DOTENV_OVERLOAD") == "1" {
		load = godotenv.Overload
	}
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		_ = load(envFile)
		return
	}
	// Every directory from this package up to the module root may carry a .env.
	if _, ok := walkUp(func(dir string) bool {
		_ = load(filepath.Join(dir, ".env"))
		return isModuleRoot(dir)
	}); !ok {
		_ = load(".env")
	}
}

// ProjectRoot returns the nearest directory above this package holding go.mod
// or .git, falling back to the working directory.
func ProjectRoot() (string, error) {
	if root, ok := walkUp(isModuleRoot); ok {
		return root, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return ".", fmt.Errorf("getwd: %w", err)
	}
	return wd, nil
}

// MustProjectRoot is ProjectRoot that panics on failure.
func MustProjectRoot() string {
	root, err := ProjectRoot()
	if err != nil {
		panic(err)
	}
	return root
}

// ProjectPath joins rel to the project root.
func ProjectPath(rel string) (string, error) {
	root, err := ProjectRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, rel), nil
}

// MustProjectPath is ProjectPath that panics on failure.
func MustProjectPath(rel string) string {
	p, err := ProjectPath(rel)
	if err != nil {
		panic(err)
	}
	return p
}

// walkUp visits this source file's directory and its parents until stop
// returns true. It reports the directory it stopped at.
func walkUp(stop func(dir string) bool) (string, bool) {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "", false
	}
	dir := filepath.Dir(file)
	for i := 0; i < maxWalkDepth; i++ {
		if stop(dir) {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}

func isModuleRoot(dir string) bool {
	return fileExists(filepath.Join(dir, "go.mod")) || fileExists(filepath.Join(dir, ".git"))
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
