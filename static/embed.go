// Package staticfiles embeds the stylesheet and the htmx hook served under
// /static/.
package staticfiles

import (
	"embed"
	"io/fs"
)

//go:embed css/*.css js/*.js
var assets embed.FS

// EmbeddedFS returns the assets rooted so that "css/rat.css" resolves.
func EmbeddedFS() fs.FS {
	return assets
}
