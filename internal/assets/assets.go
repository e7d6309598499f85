package assets

import (
	"io/fs"
	"path"
	"slices"
	"strings"
)

// EmbeddedStyles returns the names of the built-in stylesheets, sorted.
func EmbeddedStyles() []string {
	entries, err := fs.ReadDir(embedded, stylesDir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && path.Ext(e.Name()) == ".css" {
			names = append(names, strings.TrimSuffix(e.Name(), ".css"))
		}
	}
	slices.Sort(names)
	return names
}
