package node

import (
	"io/fs"
	"log/slog"
	"sort"
	"strings"
)

// Entry is one registered node definition with its resolved icon assets.
type Entry struct {
	Definition
	IconURL     string `json:"iconUrl"`
	IconDarkURL string `json:"iconDarkUrl,omitempty"`
}

// Registry is the immutable catalog of all available node definitions,
// sorted by display name. It is built once at startup and safe for
// concurrent reads.
type Registry struct {
	entries []*Entry
	byName  map[string]*Entry
}

// NewRegistry assembles a registry from the given definitions. Definitions
// missing a display name or an execute function are skipped with a warning;
// a duplicate name replaces nothing and is skipped. Icon assets are looked
// up in icons by folder-name convention; a missing icon is tolerated.
func NewRegistry(defs []Definition, icons fs.FS) *Registry {
	r := &Registry{byName: make(map[string]*Entry, len(defs))}

	for _, def := range defs {
		if def.DisplayName == "" || def.Execute == nil {
			slog.Warn("Skipping node definition with incomplete shape", "name", def.Name)
			continue
		}
		if def.Name == "" {
			slog.Warn("Skipping node definition without a name", "displayName", def.DisplayName)
			continue
		}
		if _, exists := r.byName[def.Name]; exists {
			slog.Warn("Skipping duplicate node definition", "name", def.Name)
			continue
		}

		entry := &Entry{Definition: def}
		entry.IconURL, entry.IconDarkURL = resolveIcons(icons, def.Icon)
		if entry.IconURL == "" {
			slog.Warn("No icon asset found for node", "name", def.Name, "icon", def.Icon)
		}

		r.entries = append(r.entries, entry)
		r.byName[def.Name] = entry
	}

	sort.Slice(r.entries, func(i, j int) bool {
		return r.entries[i].DisplayName < r.entries[j].DisplayName
	})
	return r
}

// Get looks up a node definition by name. A miss is not an error; callers
// decide how to handle an unknown node type.
func (r *Registry) Get(name string) (*Entry, bool) {
	e, ok := r.byName[name]
	return e, ok
}

// List returns all entries in display order.
func (r *Registry) List() []*Entry {
	out := make([]*Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len reports the number of registered nodes.
func (r *Registry) Len() int {
	return len(r.entries)
}

// resolveIcons finds the light and optional dark icon for a node's asset
// folder. The filename must match the folder name (case-insensitive), with
// a ".dark" infix for the dark variant.
func resolveIcons(icons fs.FS, folder string) (light, dark string) {
	if icons == nil || folder == "" {
		return "", ""
	}
	files, err := fs.ReadDir(icons, folder)
	if err != nil {
		return "", ""
	}

	wantLight := folder + ".svg"
	wantDark := folder + ".dark.svg"
	for _, f := range files {
		name := f.Name()
		switch {
		case strings.EqualFold(name, wantLight):
			light = "/assets/nodes/" + folder + "/" + name
		case strings.EqualFold(name, wantDark):
			dark = "/assets/nodes/" + folder + "/" + name
		}
	}
	return light, dark
}
