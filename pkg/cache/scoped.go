package cache

// ScopedKeyer wraps a Keyer with a prefix so several installations, or
// several versions of the renderer, can share one Redis instance.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "v1:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated frame keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// Prefix returns the key prefix.
func (k *ScopedKeyer) Prefix() string { return k.prefix }

// RunHash delegates to the inner keyer; run hashes are not keys.
func (k *ScopedKeyer) RunHash(opts RunKeyOpts) string {
	return k.inner.RunHash(opts)
}

// FrameKey generates a prefixed frame key.
func (k *ScopedKeyer) FrameKey(runHash string, index int, format string) string {
	return k.prefix + k.inner.FrameKey(runHash, index, format)
}
