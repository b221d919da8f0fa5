package cache

// ScopedKeyer prefixes every key of an inner keyer, giving each caller its
// own namespace in a shared backend:
//
//	api := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "api:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the default keyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// MergeKey returns the prefixed merge key.
func (k *ScopedKeyer) MergeKey(inputHash string) string {
	return k.prefix + k.inner.MergeKey(inputHash)
}

// ScoreKey returns the prefixed score key.
func (k *ScopedKeyer) ScoreKey(inputHash string, opts ScoreKeyOpts) string {
	return k.prefix + k.inner.ScoreKey(inputHash, opts)
}
