package pathtree

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes an indented outline of the tree below root. Matched nodes are
// prefixed with "!" and followed by label(record), synthetic nodes with "?".
func Fprint[R any](w io.Writer, root *Node[R], label func(R) string) error {
	return root.Walk(func(n *Node[R], depth int) error {
		indent := strings.Repeat("    ", depth-1)
		var err error
		if r, ok := n.Record(); ok {
			_, err = fmt.Fprintf(w, "%s! %s %s\n", indent, n.Path(), label(r))
		} else {
			_, err = fmt.Fprintf(w, "%s? %s\n", indent, n.Path())
		}
		return err
	})
}
