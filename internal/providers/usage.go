package providers

import (
	"context"
	"sync"
)

// Usage totals the model calls made on behalf of one operation.
// Attempts above Calls means the transport retried.
type Usage struct {
	Calls            int     `json:"calls"`
	Attempts         int     `json:"attempts"`
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	CostUSD          float64 `json:"cost_usd,omitempty"`
}

// Retried reports whether any call needed more than one attempt.
func (u Usage) Retried() bool { return u.Attempts > u.Calls }

// UsageRecorder collects Usage from every Generator call made with a
// context carrying it. Safe for concurrent use.
type UsageRecorder struct {
	mu    sync.Mutex
	usage Usage
}

// Record adds one call's result. A nil result counts as a single attempt.
func (r *UsageRecorder) Record(result *ChatResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.usage.Calls++
	if result == nil {
		r.usage.Attempts++
		return
	}
	attempts := result.Attempts
	if attempts < 1 {
		attempts = 1
	}
	r.usage.Attempts += attempts
	r.usage.PromptTokens += result.PromptTokens
	r.usage.CompletionTokens += result.CompletionTokens
	r.usage.CostUSD += result.CostUSD
}

// Usage returns the totals so far.
func (r *UsageRecorder) Usage() Usage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.usage
}

type usageKey struct{}

// WithUsageRecorder returns a context whose Generator calls are recorded in r.
func WithUsageRecorder(ctx context.Context, r *UsageRecorder) context.Context {
	return context.WithValue(ctx, usageKey{}, r)
}

func usageRecorderFrom(ctx context.Context) *UsageRecorder {
	r, _ := ctx.Value(usageKey{}).(*UsageRecorder)
	return r
}
