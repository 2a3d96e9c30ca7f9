// Package texts holds the user-facing message catalog. Messages live in an
// embedded YAML file keyed by a short identifier; T falls back to the key
// itself when a message is missing, so a typo degrades instead of crashing.
package texts

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed texts.yaml
var rawCatalog []byte

var (
	once    sync.Once
	catalog map[string]string
)

func load() {
	catalog = map[string]string{}
	if err := yaml.Unmarshal(rawCatalog, &catalog); err != nil {
		// A broken catalog means every lookup falls back to its key.
		catalog = map[string]string{}
	}
}

// T returns the message for key, formatted with args when provided.
func T(key string, args ...interface{}) string {
	once.Do(load)
	value, ok := catalog[key]
	if !ok {
		return key
	}
	if len(args) == 0 {
		return value
	}
	return fmt.Sprintf(value, args...)
}
