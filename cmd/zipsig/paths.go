package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/meigma/zipsig"
)

// expandPaths resolves shell-style wildcards in args. A pattern that matches
// nothing is dropped silently; literal paths and URLs are kept as given so a
// missing file is reported by the operation itself.
func expandPaths(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		if zipsig.IsRemote(arg) || !hasWildcard(arg) {
			out = append(out, arg)
			continue
		}
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("expand %q: %w", arg, err)
		}
		out = append(out, matches...)
	}
	return out, nil
}

func hasWildcard(path string) bool {
	return strings.ContainsAny(path, "*?[")
}
