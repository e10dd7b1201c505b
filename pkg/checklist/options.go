package checklist

import "maps"

// Option configures a Bundle built by New or WithRules.
type Option func(*Bundle)

// WithID sets the document id. New generates one when unset.
func WithID(id string) Option {
	return func(b *Bundle) {
		b.id = id
	}
}

// WithName sets the human-readable benchmark title.
func WithName(name string) Option {
	return func(b *Bundle) {
		b.benchmarkName = name
	}
}

// WithRawVersion records the version and release_info strings exactly as
// the source document wrote them.
func WithRawVersion(version, releaseInfo string) Option {
	return func(b *Bundle) {
		b.rawVersion = version
		b.releaseInfo = releaseInfo
	}
}

// WithSource labels where the bundle came from, typically a file path.
func WithSource(source string) Option {
	return func(b *Bundle) {
		b.source = source
	}
}

// WithHostMetadata sets the host key/values.
func WithHostMetadata(meta map[string]any) Option {
	return func(b *Bundle) {
		b.hostMetadata = maps.Clone(meta)
	}
}

// WithExtras sets uninterpreted document-level and benchmark-level keys.
func WithExtras(document, benchmark Extras) Option {
	return func(b *Bundle) {
		b.extra = document.Clone()
		b.benchmarkExtra = benchmark.Clone()
	}
}
