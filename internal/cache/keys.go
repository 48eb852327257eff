package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Prefix namespaces every key the server writes, so the Redis can be shared.
const Prefix = "questa"

// GenerationKey holds the search generation counter. Bumping it orphans every
// cached search page at once.
var GenerationKey = join("search", "generation")

// QuestionKey is where a single question is cached.
func QuestionKey(id string) string {
	return join("search", "question", id)
}

// SearchPageKey is where one page of results for a normalized request is
// cached within a generation. payload is the serialized request.
func SearchPageKey(generation string, payload []byte) string {
	sum := sha256.Sum256(payload)
	return join("search", "questions", generation, hex.EncodeToString(sum[:]))
}

// SearchPagePrefix matches every page key of a generation.
func SearchPagePrefix(generation string) string {
	return join("search", "questions", generation) + ":"
}

func join(parts ...string) string {
	return Prefix + ":" + strings.Join(parts, ":")
}
