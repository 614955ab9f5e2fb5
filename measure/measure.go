// Package measure collects operation counts from the hot paths when the
// CSIFISH_MEASURE environment variable is set. Disabled, every call is a
// cheap branch on a package variable.
package measure

import (
	"fmt"
	"os"
	"sort"
	"sync"
)

var Enabled bool
var Global Counter

func init() {
	Enabled = os.Getenv("CSIFISH_MEASURE") == "1"
	Global = Counter{m: make(map[string]int64)}
}

// Keys used by the signature pipeline.
const (
	IsogenySteps     = "isogeny_steps"
	DummyIsogenies   = "dummy_isogenies"
	ElligatorSamples = "elligator_samples"
	MerkleHashes     = "merkle_hashes"
)

type Counter struct {
	mu sync.Mutex
	m  map[string]int64
}

func (c *Counter) Add(key string, n int64) {
	if !Enabled {
		return
	}
	c.mu.Lock()
	c.m[key] += n
	c.mu.Unlock()
}

// SnapshotAndReset returns the current counts and clears them.
func (c *Counter) SnapshotAndReset() map[string]int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.m
	c.m = make(map[string]int64)
	return out
}

func (c *Counter) Dump() {
	if !Enabled {
		return
	}
	c.mu.Lock()
	keys := make([]string, 0, len(c.m))
	for k := range c.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Println("[measure] Operation report:")
	for _, k := range keys {
		fmt.Printf("[measure] %s = %d\n", k, c.m[k])
	}
	c.mu.Unlock()
}

// Section brackets a named phase in the report output.
func Section(name string, f func()) {
	if !Enabled {
		f()
		return
	}
	fmt.Printf("[measure] Begin %s\n", name)
	f()
	fmt.Printf("[measure] End %s\n", name)
}
