// Package appfs embeds non-Go assets shipped with the binary:
// database migrations and email templates.
package appfs

import "embed"

//go:embed migrations all:templates
var FS embed.FS
