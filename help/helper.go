package help

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// HomeDir resolves the user's home directory, falling back to the current
// directory.
func HomeDir() string {
	for _, env := range []string{"HOME", "USERPROFILE"} {
		if h := os.Getenv(env); h != "" {
			return h
		}
	}
	if u, err := user.Current(); err == nil && u.HomeDir != "" {
		return u.HomeDir
	}
	return "."
}

// DefaultKubeconfig is the first entry of $KUBECONFIG, else ~/.kube/config.
func DefaultKubeconfig() string {
	if kc := os.Getenv("KUBECONFIG"); kc != "" {
		if first, _, _ := strings.Cut(kc, string(os.PathListSeparator)); first != "" {
			return first
		}
	}
	return filepath.Join(HomeDir(), ".kube", "config")
}
