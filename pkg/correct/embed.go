package correct

import "embed"

const (
	builtinCorrectPath  = "data/correct_matches.yaml"
	builtinFilteredPath = "data/filtered.yaml"
)

//go:embed data/*.yaml
var builtinFS embed.FS
