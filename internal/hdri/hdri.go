// Package hdri resolves the environment lighting asset for a session.
// Consulted once per session, never per pose.
package hdri

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Resolve picks an environment image. An explicit override wins; otherwise
// the folder is scanned for .hdr/.exr files and either the first (sorted)
// or, with randomize set, a seeded random pick is returned. An empty
// result with a nil error means "none": the session renders with whatever
// environment the host already has.
func Resolve(folder, override string, randomize bool, seed int64) (string, error) {
	if override != "" {
		if _, err := os.Stat(override); err != nil {
			return "", fmt.Errorf("hdri: override %s: %w", override, err)
		}
		return override, nil
	}
	if folder == "" {
		return "", nil
	}

	files, err := scan(folder)
	if err != nil || len(files) == 0 {
		return "", err
	}

	if randomize {
		rng := rand.New(rand.NewSource(seed))
		return files[rng.Intn(len(files))], nil
	}
	return files[0], nil
}

// scan lists environment images in folder, sorted by name so the
// unrandomized pick is stable. A missing folder resolves to none.
func scan(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("hdri: scan %s: %w", folder, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".hdr", ".exr":
			files = append(files, filepath.Join(folder, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
