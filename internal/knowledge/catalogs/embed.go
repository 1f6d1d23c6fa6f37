package catalogs

import "embed"

// Files holds the built-in tip and FAQ catalogs, one tips.<lang>.yaml per
// language.
//
//go:embed *.yaml
var Files embed.FS
