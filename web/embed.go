// Package web embeds the console templates and static assets.
package web

import "embed"

// Templates holds layouts, partials and pages under templates/.
//
//go:embed templates/*/*.html
var Templates embed.FS

// Static holds stylesheets under static/.
//
//go:embed static/*/*
var Static embed.FS
