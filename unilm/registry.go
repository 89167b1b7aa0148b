// registry.go - Registry der bekannten UniLM-Konfigurationen
package unilm

import (
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
)

// maxSuggestDistance begrenzt den Abstand fuer Namensvorschlaege
const maxSuggestDistance = 3

// ArchiveMap ordnet Kurznamen die URL ihrer config.json zu
var ArchiveMap = map[string]string{
	"unilm-large-cased":      "https://unilm.blob.core.windows.net/ckpt/unilm-large-cased-config.json",
	"unilm-base-cased":       "https://unilm.blob.core.windows.net/ckpt/unilm-base-cased-config.json",
	"unilm1-large-cased":     "https://unilm.blob.core.windows.net/ckpt/unilm1-large-cased-config.json",
	"unilm1-base-cased":      "https://unilm.blob.core.windows.net/ckpt/unilm1-base-cased-config.json",
	"unilm1.2-base-uncased":  "https://unilm.blob.core.windows.net/ckpt/unilm1.2-base-uncased-config.json",
	"cnndm-unilm-base-cased": "https://huggingface.co/fuliucansheng/unilm/resolve/main/cnndm-unilm-base-cased-config.json",
}

// ResolveName gibt die URL fuer einen bekannten Namen zurueck,
// sonst den Namen unveraendert
func ResolveName(nameOrPath string) string {
	if url, ok := ArchiveMap[nameOrPath]; ok {
		return url
	}
	return nameOrPath
}

// IsKnownName prueft ob ein Name in der Registry steht
func IsKnownName(name string) bool {
	_, ok := ArchiveMap[name]
	return ok
}

// KnownNames gibt alle registrierten Namen sortiert zurueck
func KnownNames() []string {
	return slices.Sorted(maps.Keys(ArchiveMap))
}

// SuggestName sucht den bekannten Namen mit dem kleinsten Editierabstand zu name.
// Gross-/Kleinschreibung wird ignoriert.
func SuggestName(name string) (string, bool) {
	if name == "" || IsKnownName(name) {
		return "", false
	}

	var best string
	score := math.MaxInt
	for _, known := range KnownNames() {
		if s := levenshtein.ComputeDistance(strings.ToLower(name), known); s < score {
			score = s
			best = known
		}
	}

	if score <= maxSuggestDistance {
		return best, true
	}
	return "", false
}
