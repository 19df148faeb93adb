package serialize

import (
	"fmt"

	"github.com/heimdex/jr3d/internal/projectfile"
)

// nameSet hands out file names that are unique within one archive folder.
type nameSet map[string]bool

// claim returns the file segment of name, prefixed with an index when it is
// already taken. The index counts up from i until a free name is found.
func (s nameSet) claim(i int, name string) string {
	base := projectfile.FileSegment(name)
	cand := base
	for n := i; s[cand]; n++ {
		cand = fmt.Sprintf("%d_%s", n, base)
	}
	s[cand] = true
	return cand
}
