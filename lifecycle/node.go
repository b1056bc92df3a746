// Package lifecycle tracks ownership of native handles.
//
// Handles form a tree: a page belongs to its document, a text page to its
// page, a search to its text page. Each handle is wrapped in a Node that
// knows its parent and holds weak links to its children. Closing a node
// closes its live children first, then releases the node itself. Nodes that
// own their handle also get a finalizer entry, so a wrapper that becomes
// unreachable is released by the garbage collector with the same protocol.
//
// A release that finds an ancestor already closed is not performed; it is
// logged at logging.LevelFatal and counted, since the native library may
// have freed the child's memory along with its parent.
package lifecycle

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"weak"
)

var (
	// ErrNullHandle is returned by Acquire for a zero handle, which is how
	// the native library reports allocation failure.
	ErrNullHandle = errors.New("lifecycle: null handle")

	// ErrParentClosed is returned when spawning under a closed parent.
	ErrParentClosed = errors.New("lifecycle: parent is closed")

	// ErrCycle is returned by Reparent when the new parent descends from
	// the node.
	ErrCycle = errors.New("lifecycle: reparenting would create a cycle")

	// ErrNotOwned is returned by Reparent for a node whose handle is
	// already owned by another node.
	ErrNotOwned = errors.New("lifecycle: node does not own its handle")
)

// Kind names the type of native object behind a node.
type Kind string

// ID identifies a node in diagnostics. IDs are never reused.
type ID uint64

var lastID atomic.Uint64

// ReleaseFunc frees a native handle. It must not capture the wrapper that
// owns the node, or the wrapper can never be collected.
type ReleaseFunc func(raw uintptr)

// Origin says what triggered a close.
type Origin int

const (
	OriginExplicit  Origin = iota // Close called by the user
	OriginParent                  // cascade from a closing parent
	OriginFinalizer               // owner became unreachable
)

func (o Origin) String() string {
	switch o {
	case OriginExplicit:
		return "explicit"
	case OriginParent:
		return "parent"
	case OriginFinalizer:
		return "finalizer"
	default:
		return fmt.Sprintf("Origin(%d)", int(o))
	}
}

// Node is the lifecycle state of one native handle.
type Node struct {
	mu       sync.Mutex
	raw      uintptr
	closing  chan struct{} // non-nil while a close is in progress
	id       ID
	kind     Kind
	label    string
	reg      *Registry
	parent   *Node
	children []weak.Pointer[Node]
	entry    *Entry
}

// Acquire wraps raw in a Node. owner is the Go value whose reachability
// decides when the finalizer fires; it is normally the wrapper that will
// hold the returned node. Unless WithoutFree is given, release is called
// exactly once with raw when the node closes.
func Acquire[T any](owner *T, raw uintptr, kind Kind, parent *Node, release ReleaseFunc, opts ...Option) (*Node, error) {
	if raw == 0 {
		return nil, ErrNullHandle
	}
	cfg := acquireConfig{registry: Default, free: true, cascade: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.registry == nil {
		cfg.registry = Default
	}
	if parent != nil && parent.TreeClosed() {
		return nil, fmt.Errorf("%w: spawning %s under %s", ErrParentClosed, kind, parent)
	}

	n := &Node{
		raw:    raw,
		id:     ID(lastID.Add(1)),
		kind:   kind,
		label:  cfg.label,
		reg:    cfg.registry,
		parent: parent,
	}
	if cfg.free && release != nil {
		n.entry = register(cfg.registry, n, owner, release, cfg.after)
	}
	if parent != nil && cfg.cascade {
		parent.addChild(n)
	}
	return n, nil
}

// Raw returns the handle, or 0 once the node is closed. It does not look
// at ancestors; use Live for that.
func (n *Node) Raw() uintptr {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.raw
}

// Live returns the handle and whether it is still safe to use, meaning
// neither the node nor any ancestor has been closed.
func (n *Node) Live() (uintptr, bool) {
	raw := n.Raw()
	if raw == 0 || n.TreeClosed() {
		return 0, false
	}
	return raw, true
}

func (n *Node) ID() ID        { return n.id }
func (n *Node) Kind() Kind    { return n.kind }
func (n *Node) Label() string { return n.label }

// Parent returns the parent node, or nil for a root.
func (n *Node) Parent() *Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.parent
}

// Finalizer returns the node's finalizer entry, or nil for non-owning or
// closed nodes.
func (n *Node) Finalizer() *Entry {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.entry
}

// Closed reports whether this node has been closed.
func (n *Node) Closed() bool {
	return n.Raw() == 0
}

// Owning reports whether the node will release its handle itself.
func (n *Node) Owning() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.entry != nil
}

// TreeClosed reports whether the node or any ancestor is closed.
func (n *Node) TreeClosed() bool {
	for p := n; p != nil; p = p.Parent() {
		if p.Closed() {
			return true
		}
	}
	return false
}

// LiveChildren returns the number of child links that still resolve.
func (n *Node) LiveChildren() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, c := range n.children {
		if c.Value() != nil {
			count++
		}
	}
	return count
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	if n.label != "" {
		return fmt.Sprintf("%s#%d(%s)", n.kind, n.id, n.label)
	}
	return fmt.Sprintf("%s#%d", n.kind, n.id)
}

// Close closes live children, releases the handle and detaches the
// finalizer. It returns false if the node was already closed; a second
// Close is harmless.
func (n *Node) Close() bool {
	return n.close(OriginExplicit)
}

func (n *Node) close(origin Origin) bool {
	n.mu.Lock()
	if n.raw == 0 || n.closing != nil {
		busy := n.closing
		n.mu.Unlock()
		if busy != nil && origin == OriginParent {
			// The finalizer is closing this child right now; the parent
			// must not release before it finishes.
			<-busy
		}
		n.reg.duplicateClose(n, origin)
		return false
	}
	done := make(chan struct{})
	n.closing = done
	kids := n.children
	n.mu.Unlock()

	// Children are closed newest first, so later dependents (a search on
	// a text page loaded after the form environment) go before earlier ones.
	for i := len(kids) - 1; i >= 0; i-- {
		if c := kids[i].Value(); c != nil {
			c.close(OriginParent)
		}
	}

	n.mu.Lock()
	e := n.entry
	n.mu.Unlock()
	if e != nil {
		e.fire(origin)
	} else if p := n.Parent(); p != nil && p.TreeClosed() {
		// Borrowed handles have nothing to release, but closing one after
		// its owner still means the caller lost track of the tree.
		n.reg.orderingViolation(n.id, n.kind, n.label, n.Raw(), p, origin)
	}

	n.mu.Lock()
	n.raw = 0
	n.closing = nil
	n.entry = nil
	n.children = nil
	n.mu.Unlock()
	close(done)
	if e != nil {
		e.detach()
	}
	return true
}

func (n *Node) addChild(c *Node) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.children) == cap(n.children) {
		n.children = compact(n.children)
	}
	n.children = append(n.children, weak.Make(c))
}

func (n *Node) removeChild(c *Node) {
	n.mu.Lock()
	defer n.mu.Unlock()
	kept := n.children[:0]
	for _, w := range n.children {
		if v := w.Value(); v != nil && v != c {
			kept = append(kept, w)
		}
	}
	clear(n.children[len(kept):])
	n.children = kept
}

// compact drops links to collected children.
func compact(children []weak.Pointer[Node]) []weak.Pointer[Node] {
	kept := children[:0]
	for _, w := range children {
		if w.Value() != nil {
			kept = append(kept, w)
		}
	}
	clear(children[len(kept):])
	return kept
}

// Reparent hands an owning node's handle over to parent: the node stops
// releasing it and is closed (without release) when parent closes. Inserting
// a page object into a page is the typical case.
func (n *Node) Reparent(parent *Node) error {
	if parent == nil {
		return fmt.Errorf("%w: nil parent", ErrParentClosed)
	}
	for p := parent; p != nil; p = p.Parent() {
		if p == n {
			return ErrCycle
		}
	}
	if parent.TreeClosed() {
		return fmt.Errorf("%w: reparenting %s under %s", ErrParentClosed, n, parent)
	}

	n.mu.Lock()
	if n.raw == 0 {
		n.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNullHandle, n)
	}
	if n.entry == nil {
		n.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotOwned, n)
	}
	e := n.entry
	old := n.parent
	n.entry = nil
	n.parent = parent
	n.mu.Unlock()

	e.detach()
	if old != nil {
		old.removeChild(n)
	}
	parent.addChild(n)
	return nil
}

// Orphan is the reverse of Reparent: the node moves under parent (nil
// makes it a root) and owns its handle again, released by release once
// owner is unreachable or the node is closed. Closing parent closes the
// node first.
func Orphan[T any](n, parent *Node, owner *T, release ReleaseFunc) error {
	for p := parent; p != nil; p = p.Parent() {
		if p == n {
			return ErrCycle
		}
	}
	if parent != nil && parent.TreeClosed() {
		return fmt.Errorf("%w: orphaning %s under %s", ErrParentClosed, n, parent)
	}

	n.mu.Lock()
	if n.raw == 0 {
		n.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNullHandle, n)
	}
	old := n.parent
	owning := n.entry != nil
	n.parent = parent
	n.mu.Unlock()

	if old != nil {
		old.removeChild(n)
	}
	if parent != nil {
		parent.addChild(n)
	}
	if owning {
		return nil
	}
	e := register(n.reg, n, owner, release, nil)

	n.mu.Lock()
	n.entry = e
	n.mu.Unlock()
	return nil
}
