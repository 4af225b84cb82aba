package pathtree

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrDuplicatePath is returned when two records declare the same path.
	ErrDuplicatePath = errors.New("duplicate member path")

	// ErrUnmatchedRecord is returned when a record cannot be attached to
	// exactly one tree node.
	ErrUnmatchedRecord = errors.New("member record not matched to exactly one tree node")
)

// rootComponent marks an absolute path.
const rootComponent = "/"

// Node is one node of a reconciled tree. A node either carries the record
// declared at its path or is synthetic.
type Node[R any] struct {
	components []string
	record     R
	matched    bool
	children   []*Node[R]
	index      map[string]*Node[R]
}

// Split breaks a declared member path into its components.
func Split(p string) []string {
	var comps []string
	if strings.HasPrefix(p, rootComponent) {
		comps = append(comps, rootComponent)
	}
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			comps = append(comps, seg)
		}
	}
	return comps
}

// Join assembles components back into a slash-separated path.
func Join(comps []string) string {
	if len(comps) > 0 && comps[0] == rootComponent {
		return rootComponent + strings.Join(comps[1:], "/")
	}
	return strings.Join(comps, "/")
}

func key(comps []string) string {
	return strings.Join(comps, "\x00")
}

// Build reconciles records into a tree. pathOf returns the path each record
// declares. The returned root has no record and an empty path; its children
// are the top-level components in order of first appearance.
func Build[R any](records []R, pathOf func(R) string) (*Node[R], error) {
	declared := make([][]string, len(records))
	byPath := make(map[string]int, len(records))
	for i, r := range records {
		comps := Split(pathOf(r))
		k := key(comps)
		if j, dup := byPath[k]; dup {
			return nil, fmt.Errorf("%w: %q declared by members %d and %d", ErrDuplicatePath, pathOf(r), j, i)
		}
		byPath[k] = i
		declared[i] = comps
	}

	root := &Node[R]{}
	for _, comps := range declared {
		cur := root
		for _, c := range comps {
			cur = cur.child(c)
		}
	}

	attached := make([]int, len(records))
	err := root.Walk(func(n *Node[R], _ int) error {
		i, ok := byPath[key(n.components)]
		if !ok {
			return nil
		}
		if n.matched {
			return fmt.Errorf("%w: %q attached twice", ErrDuplicatePath, n.Path())
		}
		n.record = records[i]
		n.matched = true
		attached[i]++
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i, count := range attached {
		if count != 1 {
			return nil, fmt.Errorf("%w: %q (member %d)", ErrUnmatchedRecord, pathOf(records[i]), i)
		}
	}
	return root, nil
}

func (n *Node[R]) child(name string) *Node[R] {
	if c, ok := n.index[name]; ok {
		return c
	}
	if n.index == nil {
		n.index = make(map[string]*Node[R])
	}
	comps := make([]string, len(n.components)+1)
	copy(comps, n.components)
	comps[len(n.components)] = name
	c := &Node[R]{components: comps}
	n.index[name] = c
	n.children = append(n.children, c)
	return c
}

// Path returns the assembled path of the node.
func (n *Node[R]) Path() string {
	return Join(n.components)
}

// Name returns the last path component, or the empty string for the root.
func (n *Node[R]) Name() string {
	if len(n.components) == 0 {
		return ""
	}
	return n.components[len(n.components)-1]
}

// Components returns a copy of the node's path components.
func (n *Node[R]) Components() []string {
	return slices.Clone(n.components)
}

// Record returns the record attached to the node, if any.
func (n *Node[R]) Record() (R, bool) {
	return n.record, n.matched
}

// Synthetic reports whether the node stands for an implied path component.
func (n *Node[R]) Synthetic() bool {
	return !n.matched
}

// Children returns the node's children in order of first appearance.
func (n *Node[R]) Children() []*Node[R] {
	return n.children
}

// Walk visits every descendant of n in pre-order. depth is 1 for n's
// children. A non-nil error from fn stops the walk.
func (n *Node[R]) Walk(fn func(node *Node[R], depth int) error) error {
	return n.walk(fn, 1)
}

func (n *Node[R]) walk(fn func(*Node[R], int) error, depth int) error {
	for _, c := range n.children {
		if err := fn(c, depth); err != nil {
			return err
		}
		if err := c.walk(fn, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// Flatten returns the attached records in pre-order.
func (n *Node[R]) Flatten() []R {
	var out []R
	_ = n.Walk(func(c *Node[R], _ int) error {
		if r, ok := c.Record(); ok {
			out = append(out, r)
		}
		return nil
	})
	return out
}

// Len returns the number of descendants of n.
func (n *Node[R]) Len() int {
	count := 0
	_ = n.Walk(func(*Node[R], int) error {
		count++
		return nil
	})
	return count
}
