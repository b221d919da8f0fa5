package cache

// Keyer builds cache keys. Implementations must be deterministic: equal
// arguments give equal keys.
type Keyer interface {
	// MergeKey keys a merged network by the hash of its inputs.
	MergeKey(inputHash string) string
	// ScoreKey keys a score report by the hash of its inputs and options.
	ScoreKey(inputHash string, opts ScoreKeyOpts) string
}

// ScoreKeyOpts holds the options a score report depends on.
type ScoreKeyOpts struct {
	// Table is the hash of the node-group table, empty for the default.
	Table string `json:"table,omitempty"`
}

// DefaultKeyer builds keys of the form "kind:sha256".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// MergeKey returns "merge:<hash>".
func (DefaultKeyer) MergeKey(inputHash string) string {
	return hashKey("merge", inputHash)
}

// ScoreKey returns "score:<hash>".
func (DefaultKeyer) ScoreKey(inputHash string, opts ScoreKeyOpts) string {
	return hashKey("score", inputHash, opts)
}

var _ Keyer = DefaultKeyer{}
