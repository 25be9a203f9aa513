package decode

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// listGIFs returns the current .gif entries of dir, sorted by name, skipping
// subdirectories. It returns nil if dir can't be read. The extension match
// is case-insensitive, so "clip.GIF" counts too.
func listGIFs(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".gif") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths
}

// pathCycle walks dir's .gif contents forever, re-listing the directory each
// time it runs out of entries so files dropped in later are picked up. It
// yields "" whenever a pass finds nothing, mirroring an empty directory
// iterator that never advances.
func pathCycle(dir string) func(yield func(string) bool) {
	return func(yield func(string) bool) {
		for {
			paths := listGIFs(dir)
			if len(paths) == 0 {
				if !yield("") {
					return
				}
				continue
			}
			for _, p := range paths {
				if !yield(p) {
					return
				}
			}
		}
	}
}
