package normalize

import "strings"

// trueValues is the set of tokens the sources use for an affirmative flag.
var trueValues = map[string]bool{
	"1": true, "t": true, "true": true, "si": true, "s": true,
}

// Bool normalizes an arbitrary textual yes/no flag. Unknown tokens, empty
// values and nulls all normalize to false; this is lossy on purpose, the
// sources carry too many spellings to enumerate and a missed flag is
// corrected in the grid.
func Bool(raw string) bool {
	return trueValues[strings.ToLower(strings.TrimSpace(raw))]
}
