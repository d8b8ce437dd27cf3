// Package appfs embeds the files the binaries need at runtime: SQL migrations and e-mail templates.
package appfs

import "embed"

// Directory patterns skip files starting with "_", so the base layouts are listed explicitly.
//go:embed migrations templates templates/email/_*
var FS embed.FS
