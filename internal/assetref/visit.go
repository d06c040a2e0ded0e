package assetref

import (
	"encoding/json"
	"strings"
)

const maxDepth = 64

// KeyPredicate selects the object keys whose string values are collected
type KeyPredicate func(key string) bool

// IsAssetKey matches "assetId" and any key ending in "AssetId"
func IsAssetKey(key string) bool {
	return key == "assetId" || strings.HasSuffix(key, "AssetId")
}

// Match is a string value found under an accepted key
type Match struct {
	Path  []string
	Key   string
	Value string
}

// Walk visits a decoded JSON tree and reports every non-empty string value stored
// under a key accepted by pred. Nodes that are not JSON shaped are normalized
// through encoding/json as they are reached; a node that cannot be normalized is
// skipped without hiding its siblings.
func Walk(v any, pred KeyPredicate, visit func(Match)) {
	walk(v, nil, pred, visit, 0)
}

func walk(v any, path []string, pred KeyPredicate, visit func(Match), depth int) {
	if depth > maxDepth {
		return
	}

	switch node := normalize(v).(type) {
	case map[string]any:
		for _, key := range sortedKeys(node) {
			child := node[key]
			if s, ok := child.(string); ok {
				if pred(key) && strings.TrimSpace(s) != "" {
					visit(Match{Path: appendPath(path, key), Key: key, Value: strings.TrimSpace(s)})
				}
				continue
			}
			walk(child, appendPath(path, key), pred, visit, depth+1)
		}
	case []any:
		for i, child := range node {
			walk(child, appendPath(path, itoa(i)), pred, visit, depth+1)
		}
	}
}

// normalize converts Go values built outside encoding/json into the generic
// map[string]any / []any shape
func normalize(v any) any {
	switch v.(type) {
	case nil, string, bool, float64, map[string]any, []any:
		return v
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}

func appendPath(path []string, elem string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, elem)
}
