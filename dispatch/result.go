package dispatch

import "time"

// Result formats.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// ErrorDescriptor describes one failure in a result.
type ErrorDescriptor struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// ResultMetadata carries execution measurements alongside the output.
type ResultMetadata struct {
	// ExecutionTime is the wall-clock handler duration. Zero for results
	// served from cache.
	ExecutionTime time.Duration `json:"execution_time"`

	// CacheHit reports whether the result was served from cache.
	CacheHit bool `json:"cache_hit"`

	// ResourcesUsed holds handler-reported resource measurements.
	ResourcesUsed map[string]any `json:"resources_used,omitempty"`
}

// Result is the outcome of one dispatch. Every dispatch produces one;
// pipeline failures populate Errors instead of escaping as raw errors.
type Result struct {
	Success  bool              `json:"success"`
	Output   any               `json:"output,omitempty"`
	Format   string            `json:"format,omitempty"`
	Metadata ResultMetadata    `json:"metadata"`
	Warnings []string          `json:"warnings,omitempty"`
	Errors   []ErrorDescriptor `json:"errors,omitempty"`
}

// Failure builds a failed result with a single error descriptor.
func Failure(code, message, detail string) *Result {
	return &Result{
		Success: false,
		Errors:  []ErrorDescriptor{{Code: code, Message: message, Detail: detail}},
	}
}

// clone returns an independent copy of the result, with its own warning and
// error slices and resource map, so one copy can be annotated without
// affecting another.
func (r *Result) clone() *Result {
	c := *r
	c.Warnings = append([]string(nil), r.Warnings...)
	c.Errors = append([]ErrorDescriptor(nil), r.Errors...)
	if r.Metadata.ResourcesUsed != nil {
		c.Metadata.ResourcesUsed = make(map[string]any, len(r.Metadata.ResourcesUsed))
		for k, v := range r.Metadata.ResourcesUsed {
			c.Metadata.ResourcesUsed[k] = v
		}
	}
	return &c
}

// FirstError returns the first error descriptor, if any.
func (r *Result) FirstError() (ErrorDescriptor, bool) {
	if len(r.Errors) == 0 {
		return ErrorDescriptor{}, false
	}
	return r.Errors[0], true
}
