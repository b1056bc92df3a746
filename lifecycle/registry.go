package lifecycle

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/obinnaokechukwu/pdfgo/logging"
)

// Default is the registry used when Acquire is not given WithRegistry.
var Default = NewRegistry()

// Registry tracks finalizer entries for every owning node that has not been
// released yet. Entries are held strongly here, so the release function and
// anything it captured (pinned buffers, callback handles) outlive the owner
// until the release actually runs.
type Registry struct {
	mu        sync.Mutex
	live      map[ID]*Entry
	scope     atomic.Pointer[Scope]
	trace     atomic.Bool

	registered         atomic.Uint64
	released           atomic.Uint64
	finalized          atomic.Uint64
	orderingViolations atomic.Uint64
	shutdownRaces      atomic.Uint64
	duplicateCloses    atomic.Uint64
}

// NewRegistry returns an empty registry whose library is always available.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{live: make(map[ID]*Entry)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Scope runs release if the native library can still take the call and
// reports whether it did. The check and the call must be one step with
// respect to library teardown: a scope that checks, returns, and lets the
// caller call afterwards reopens the shutdown race.
type Scope func(release func()) bool

// SetScope replaces the scope every native release runs in. nil means the
// library is always available.
func (r *Registry) SetScope(scope Scope) {
	if scope == nil {
		r.scope.Store(nil)
		return
	}
	r.scope.Store(&scope)
}

// SetAvailability is SetScope for a plain check with no teardown to hold
// off. nil means always available.
func (r *Registry) SetAvailability(available func() bool) {
	if available == nil {
		r.SetScope(nil)
		return
	}
	r.SetScope(func(release func()) bool {
		if !available() {
			return false
		}
		release()
		return true
	})
}

// SetTrace turns per-release logging on or off.
func (r *Registry) SetTrace(on bool) {
	r.trace.Store(on)
}

func (r *Registry) run(release func()) bool {
	s := r.scope.Load()
	if s == nil {
		release()
		return true
	}
	return (*s)(release)
}

// Entry is the finalizer record of one owning node. Everything needed to
// release the handle is captured at registration time, including the
// parent used for the ordering check, so the entry stays meaningful after
// the owner is gone.
type Entry struct {
	reg     *Registry
	node    *Node
	id      ID
	kind    Kind
	label   string
	raw     uintptr
	parent  *Node
	release ReleaseFunc
	after   func()

	fired   atomic.Bool
	cleanup runtime.Cleanup
	armed   bool
}

// register creates the entry for n and ties it to owner's reachability.
// The cleanup argument is the entry, which never references owner.
func register[T any](r *Registry, n *Node, owner *T, release ReleaseFunc, after func()) *Entry {
	e := &Entry{
		reg:     r,
		node:    n,
		id:      n.id,
		kind:    n.kind,
		label:   n.label,
		raw:     n.Raw(),
		parent:  n.Parent(),
		release: release,
		after:   after,
	}
	if owner != nil {
		e.cleanup = runtime.AddCleanup(owner, (*Entry).finalize, e)
		e.armed = true
	}

	r.mu.Lock()
	r.live[e.id] = e
	r.mu.Unlock()
	r.registered.Add(1)
	return e
}

// finalize runs on the runtime's cleanup goroutine once the owner is
// unreachable. It closes the node the same way an explicit Close would.
func (e *Entry) finalize() {
	e.node.close(OriginFinalizer)
}

// Fired reports whether the release has been attempted.
func (e *Entry) Fired() bool {
	return e.fired.Load()
}

// Trigger runs the release now without touching the node. Node.Close is the
// normal way in; Trigger exists for callers that manage raw handles
// themselves. It reports whether this call did the work; later calls are
// no-ops.
func (e *Entry) Trigger() bool {
	return e.fire(OriginExplicit)
}

func (e *Entry) fire(origin Origin) bool {
	r := e.reg
	if !e.fired.CompareAndSwap(false, true) {
		r.log(slog.LevelDebug, "finalizer already fired", e.id, e.kind, e.label, e.raw, origin)
		return false
	}
	if e.after != nil {
		defer e.after()
	}
	if e.parent != nil && e.parent.TreeClosed() {
		r.orderingViolation(e.id, e.kind, e.label, e.raw, e.parent, origin)
		return true
	}
	if !r.run(func() { e.release(e.raw) }) {
		r.shutdownRaces.Add(1)
		r.log(slog.LevelWarn, "library destroyed, leaking handle", e.id, e.kind, e.label, e.raw, origin)
		return true
	}

	r.released.Add(1)
	if origin == OriginFinalizer {
		r.finalized.Add(1)
	}
	level := slog.LevelDebug
	if r.trace.Load() {
		level = slog.LevelInfo
	}
	r.log(level, "released", e.id, e.kind, e.label, e.raw, origin)
	return true
}

// detach stops the GC cleanup and drops the entry from the registry.
func (e *Entry) detach() {
	if e.armed {
		e.cleanup.Stop()
		e.armed = false
	}
	e.reg.mu.Lock()
	delete(e.reg.live, e.id)
	e.reg.mu.Unlock()
}

func (r *Registry) duplicateClose(n *Node, origin Origin) {
	r.duplicateCloses.Add(1)
	level := slog.LevelDebug
	if origin == OriginExplicit {
		level = slog.LevelWarn
	}
	r.log(level, "duplicate close", n.id, n.kind, n.label, 0, origin)
}

func (r *Registry) orderingViolation(id ID, kind Kind, label string, raw uintptr, parent *Node, origin Origin) {
	r.orderingViolations.Add(1)
	logging.Fatal("ordering violation: parent closed before child",
		slog.Uint64("id", uint64(id)),
		slog.String("kind", string(kind)),
		slog.String("label", label),
		slog.String("raw", fmt.Sprintf("%#x", raw)),
		slog.String("parent", parent.String()),
		slog.String("origin", origin.String()),
	)
}

func (r *Registry) log(level slog.Level, msg string, id ID, kind Kind, label string, raw uintptr, origin Origin) {
	l := logging.Logger()
	if !l.Enabled(context.Background(), level) {
		return
	}
	attrs := []slog.Attr{
		slog.Uint64("id", uint64(id)),
		slog.String("kind", string(kind)),
		slog.String("origin", origin.String()),
	}
	if label != "" {
		attrs = append(attrs, slog.String("label", label))
	}
	if raw != 0 {
		attrs = append(attrs, slog.String("raw", fmt.Sprintf("%#x", raw)))
	}
	l.LogAttrs(context.Background(), level, msg, attrs...)
}

// Stats is a snapshot of registry counters.
type Stats struct {
	Registered         uint64 // entries ever created
	Released           uint64 // native releases performed
	Finalized          uint64 // of those, triggered by the garbage collector
	OrderingViolations uint64
	ShutdownRaces      uint64
	DuplicateCloses    uint64
	Live               int // entries not yet released
}

// Stats returns the current counters.
func (r *Registry) Stats() Stats {
	r.mu.Lock()
	live := len(r.live)
	r.mu.Unlock()
	return Stats{
		Registered:         r.registered.Load(),
		Released:           r.released.Load(),
		Finalized:          r.finalized.Load(),
		OrderingViolations: r.orderingViolations.Load(),
		ShutdownRaces:      r.shutdownRaces.Load(),
		DuplicateCloses:    r.duplicateCloses.Load(),
		Live:               live,
	}
}

// EntryInfo describes an unreleased entry.
type EntryInfo struct {
	ID     ID
	Kind   Kind
	Label  string
	Raw    uintptr
	Parent ID // 0 for roots
}

// LiveEntries lists unreleased entries ordered by ID, for leak reports.
func (r *Registry) LiveEntries() []EntryInfo {
	r.mu.Lock()
	out := make([]EntryInfo, 0, len(r.live))
	for _, e := range r.live {
		info := EntryInfo{ID: e.id, Kind: e.kind, Label: e.label, Raw: e.raw}
		if e.parent != nil {
			info.Parent = e.parent.id
		}
		out = append(out, info)
	}
	r.mu.Unlock()
	slices.SortFunc(out, func(a, b EntryInfo) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// CloseAll closes every live node, roots first so each cascade reaches the
// whole tree below it. It returns how many nodes it closed itself.
func (r *Registry) CloseAll() int {
	r.mu.Lock()
	nodes := make([]*Node, 0, len(r.live))
	for _, e := range r.live {
		nodes = append(nodes, e.node)
	}
	r.mu.Unlock()

	slices.SortFunc(nodes, func(a, b *Node) int { return depth(a) - depth(b) })
	closed := 0
	for _, n := range nodes {
		if n.Closed() {
			continue // reached by an earlier cascade
		}
		if n.close(OriginExplicit) {
			closed++
		}
	}
	return closed
}

func depth(n *Node) int {
	d := 0
	for p := n.Parent(); p != nil; p = p.Parent() {
		d++
	}
	return d
}
