package catalog

import "embed"

// builtinCatalogsFS embeds the builtin catalogs, one file per kind.
//
//go:embed data/*.yaml
var builtinCatalogsFS embed.FS

func builtinPath(kind Kind) string {
	return "data/" + string(kind) + ".yaml"
}
