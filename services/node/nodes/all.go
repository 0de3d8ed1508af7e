// Package nodes holds the built-in node definitions. Each file exports one
// definition constant; All is the explicit registration list the registry is
// assembled from.
package nodes

import (
	"embed"
	"io/fs"

	"halo-platform/api/services/node"
)

//go:embed icons
var iconAssets embed.FS

// All returns the definitions of every built-in node.
func All() []node.Definition {
	return []node.Definition{
		WebhookTrigger,
		Condition,
		Delay,
		HTTPRequest,
		Set,
		ErrorHandler,
		EmailSend,
	}
}

// Icons returns the embedded icon assets, rooted at the per-node folders.
func Icons() fs.FS {
	sub, err := fs.Sub(iconAssets, "icons")
	if err != nil {
		return nil
	}
	return sub
}
