package config

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// fallbackShells are tried when $SHELL is unset or not runnable.
var fallbackShells = []string{"/bin/bash", "/bin/zsh", "/bin/sh"}

// Command returns args when it names a command, otherwise the user's login
// shell resolved to an executable path.
func Command(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}

	candidates := fallbackShells
	if env := os.Getenv("SHELL"); env != "" {
		candidates = append([]string{env}, fallbackShells...)
	}
	for _, name := range candidates {
		if path, err := exec.LookPath(name); err == nil {
			return []string{path}, nil
		}
	}
	return nil, fmt.Errorf("no shell found: $SHELL unusable and none of %s", strings.Join(fallbackShells, ", "))
}
