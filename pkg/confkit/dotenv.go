package confkit

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

// Environment switches read before any .env file is loaded.
const (
	EnvNoDotenv = "YI_NO_DOTENV"       // "1" disables .env loading
	EnvOverload = "YI_DOTENV_OVERLOAD" // "1" lets .env values replace the process env
	EnvFile     = "YI_ENV_FILE"        // explicit .env path
)

var dotenvOnce sync.Once

// LoadDotenvOnce loads .env into the process environment the first time it
// is called. Values already present in the environment win unless
// YI_DOTENV_OVERLOAD=1.
func LoadDotenvOnce() {
	dotenvOnce.Do(func() {
		loadDotenv(os.Getenv)
	})
}

func loadDotenv(getenv func(string) string) []string {
	if getenv(EnvNoDotenv) == "1" {
		return nil
	}
	apply := godotenv.Load
	if getenv(EnvOverload) == "1" {
		apply = godotenv.Overload
	}

	var loaded []string
	seen := map[string]bool{}
	load := func(p string) {
		if seen[p] || !exists(p) {
			return
		}
		seen[p] = true
		if err := apply(p); err == nil {
			loaded = append(loaded, p)
		}
	}

	if p := getenv(EnvFile); p != "" {
		load(p)
		return loaded
	}
	if wd, err := os.Getwd(); err == nil {
		load(filepath.Join(wd, ".env"))
	}
	if dir, ok := sourceDir(); ok {
		walkUp(dir, func(d string) bool {
			load(filepath.Join(d, ".env"))
			return false
		})
	}
	return loaded
}
