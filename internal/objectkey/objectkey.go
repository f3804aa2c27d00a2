// Package objectkey derives storage object keys for uploads.
package objectkey

import (
	"fmt"
	"strings"
	"time"
)

// DefaultPrefix is the key namespace every upload lands in.
const DefaultPrefix = "uploads"

// Resolver builds keys of the form "<prefix>/<unix-millis>-<filename>".
// Keys are unique as long as no two requests share both the millisecond and
// the filename.
type Resolver struct {
	prefix string
	now    func() time.Time
}

// NewResolver returns a Resolver using the wall clock. An empty prefix
// falls back to DefaultPrefix.
func NewResolver(prefix string) *Resolver {
	return NewResolverWithClock(prefix, time.Now)
}

// NewResolverWithClock is NewResolver with an injectable clock.
func NewResolverWithClock(prefix string, now func() time.Time) *Resolver {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Resolver{prefix: prefix, now: now}
}

// Resolve returns the object key for filename. The filename is used verbatim.
func (r *Resolver) Resolve(filename string) string {
	return fmt.Sprintf("%s/%d-%s", r.prefix, r.now().UnixMilli(), filename)
}
