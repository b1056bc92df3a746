package lifecycle

// Option configures Acquire.
type Option func(*acquireConfig)

type acquireConfig struct {
	registry *Registry
	free     bool
	cascade  bool
	label    string
	after    func()
}

// WithRegistry registers the node's finalizer entry in r instead of Default.
func WithRegistry(r *Registry) Option {
	return func(c *acquireConfig) { c.registry = r }
}

// WithoutFree marks a non-owning node: the handle is borrowed from the
// parent (an attachment, a page object living on its page) and has no
// release function of its own.
func WithoutFree() Option {
	return func(c *acquireConfig) { c.free = false }
}

// WithoutCascade keeps the node out of its parent's child list. Closing the
// parent will not close it; closing it after the parent is then an ordering
// violation.
func WithoutCascade() Option {
	return func(c *acquireConfig) { c.cascade = false }
}

// WithLabel attaches a human-readable label (file name, page index) used in
// diagnostics.
func WithLabel(label string) Option {
	return func(c *acquireConfig) { c.label = label }
}

// WithHostCleanup runs fn after the release has been attempted, whether the
// native call ran or was skipped (ordering violation, library destroyed).
// It frees Go-side state the handle depended on, such as pinned buffers,
// which must be unpinned even when the handle itself is leaked.
func WithHostCleanup(fn func()) Option {
	return func(c *acquireConfig) { c.after = fn }
}

// RegistryOption configures NewRegistry.
type RegistryOption func(*Registry)

// WithAvailability sets the check consulted before every native release.
// When it returns false the release is skipped and the handle leaked.
func WithAvailability(available func() bool) RegistryOption {
	return func(r *Registry) { r.SetAvailability(available) }
}

// WithScope sets the scope every native release runs in; see Scope.
func WithScope(scope Scope) RegistryOption {
	return func(r *Registry) { r.SetScope(scope) }
}

// WithTrace logs every release and where it came from.
func WithTrace(on bool) RegistryOption {
	return func(r *Registry) { r.SetTrace(on) }
}
