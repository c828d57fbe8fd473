package chromedp_fetcher

import (
	"context"
	"testing"
	"time"
)

func TestWithOptionalTimeout(t *testing.T) {
	tests := []struct {
		name         string
		timeout      time.Duration
		wantDeadline bool
	}{
		{"zero is unbounded", 0, false},
		{"negative is unbounded", -time.Second, false},
		{"positive sets deadline", time.Minute, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := withOptionalTimeout(context.Background(), tt.timeout)
			defer cancel()

			if _, ok := ctx.Deadline(); ok != tt.wantDeadline {
				t.Errorf("Deadline() set = %v, want %v", ok, tt.wantDeadline)
			}
			if err := ctx.Err(); err != nil {
				t.Errorf("Err() = %v, want live context", err)
			}

			cancel()
			if ctx.Err() == nil {
				t.Error("cancel did not stop the context")
			}
		})
	}
}
