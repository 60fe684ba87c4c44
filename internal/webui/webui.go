// Package webui embeds SharpInspect's bundled web UI assets and serves
// them as plain static files.
//
// The bundled UI's content is out of scope for this module (a real
// DevTools-style frontend is treated as an opaque external blob); only the
// serving mechanism is in scope, since every embedder of this pattern
// needs an embedded-filesystem static handler. assets/index.html is a
// placeholder stub, not a reimplementation of any DevTools frontend.
package webui

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed assets
var embedded embed.FS

// FileServer returns an http.Handler serving the bundled assets rooted at
// "/", with "/" itself resolving to index.html (http.FileServer's default
// behavior for a directory index).
func FileServer() http.Handler {
	sub, err := fs.Sub(embedded, "assets")
	if err != nil {
		// assets is embedded at build time; Sub can only fail if the embed
		// directive itself is wrong, which would already fail to compile.
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
