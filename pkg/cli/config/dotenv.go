package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads .env files with priority .env.local > .env. Variables
// already set in the environment are never overwritten. Returns the files
// actually loaded.
func LoadDotEnv(dir string) ([]string, error) {
	var loaded []string
	for _, name := range []string{".env.local", ".env"} {
		path := name
		if dir != "" {
			path = dir + string(os.PathSeparator) + name
		}
		if _, err := os.Stat(path); err == nil {
			loaded = append(loaded, path)
		}
	}
	if len(loaded) == 0 {
		return nil, nil
	}

	if err := godotenv.Load(loaded...); err != nil {
		return nil, err
	}
	return loaded, nil
}
