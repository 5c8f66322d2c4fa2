package migrations

import "embed"

// FS встроенные схемы для postgres/ и sqlite/
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
