// Package emoji provides the status marks printed in table output.
package emoji

const (
	// Success marks a checklist that was upgraded, compared or validated cleanly.
	Success = "✓"

	// Error marks a checklist that failed to load, merge or save.
	Error = "✗"

	// Warning marks a result that succeeded with a benchmark mismatch or
	// a version downgrade.
	Warning = "!"
)
