package sanitize

import "fmt"

// maxRawInError bounds how much of the reply is echoed by Error().
const maxRawInError = 200

// SchemaViolationError reports a model reply that is not usable JSON, or,
// for Strict, an element that does not match the block schema.
// Raw is the unmodified reply.
type SchemaViolationError struct {
	Raw   string
	Index int // 1-based element position for strict violations, 0 otherwise
	Err   error
}

func (e *SchemaViolationError) Error() string {
	if e.Index > 0 {
		return fmt.Sprintf("model output violates block schema (element %d): %v", e.Index, e.Err)
	}
	return fmt.Sprintf("model output is not valid JSON: %v (raw: %q)", e.Err, truncate(e.Raw, maxRawInError))
}

func (e *SchemaViolationError) Unwrap() error { return e.Err }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
