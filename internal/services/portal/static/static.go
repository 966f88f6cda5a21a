// Package static embeds the portal stylesheet and client script.
package static

import "embed"

// FS exposes portal static assets for HTTP serving.
//
//go:embed *.css *.js
var FS embed.FS
