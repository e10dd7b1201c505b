package differ

// Option is a functional option for configuring a Differ.
type Option func(*differ)

// WithIgnoredFields excludes content fields from revision detection.
// Field names are those used in FieldChange.Path.
func WithIgnoredFields(fields ...string) Option {
	return func(d *differ) {
		for _, field := range fields {
			d.ignoreFields[field] = true
		}
	}
}

// WithDeepComparison enables or disables per-field revision detection on
// matched rules. Matching itself is unaffected.
func WithDeepComparison(enabled bool) Option {
	return func(d *differ) {
		d.deepComparison = enabled
	}
}
