// Package web holds the HTML templates of the portal.
package web

import "embed"

// Templates contains templates/layout.html and one file per page under
// templates/pages.
//
//go:embed templates
var Templates embed.FS
