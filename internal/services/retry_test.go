package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"ttx/internal/models"
	"ttx/internal/shared"
	ttxtest "ttx/internal/testing"
)

func collapseBackoff(t *testing.T) {
	t.Helper()
	old := rateLimitBackoff
	rateLimitBackoff = 0
	t.Cleanup(func() { rateLimitBackoff = old })
}

func TestWithRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("Exhausts Attempts", func(t *testing.T) {
		collapseBackoff(t)

		transport := ttxtest.NewScriptedTransport(ttxtest.Step{Status: 429})
		gw := newTestGateway(transport)

		_, err := WithRetry(ctx, func(ctx context.Context) (*APIResponse, error) {
			return gw.Request(ctx, models.ToolToggl, "GET", "/me/workspaces", nil, nil)
		}, 5)

		if !errors.Is(err, shared.ErrMaxAttempts) {
			t.Fatalf("expected ErrMaxAttempts, got %v", err)
		}
		// 1 initial call + 5 retries.
		if transport.Calls() != 6 {
			t.Errorf("expected 6 calls, got %d", transport.Calls())
		}
		if StatusOf(err) != 0 {
			t.Error("attempts-exhausted error must not carry an HTTP status")
		}
	})

	t.Run("Recovers After Two 429s", func(t *testing.T) {
		collapseBackoff(t)

		transport := ttxtest.NewScriptedTransport(
			ttxtest.Step{Status: 429},
			ttxtest.Step{Status: 429},
			ttxtest.Step{Status: 200, Body: `[{"id":1,"name":"Main"}]`},
		)
		gw := newTestGateway(transport)

		resp, err := WithRetry(ctx, func(ctx context.Context) (*APIResponse, error) {
			return gw.Request(ctx, models.ToolToggl, "GET", "/me/workspaces", nil, nil)
		}, 5)

		if err != nil {
			t.Fatalf("expected recovery, got %v", err)
		}
		if transport.Calls() != 3 {
			t.Errorf("expected exactly 3 calls, got %d", transport.Calls())
		}
		if !resp.IsJSON {
			t.Error("expected the 200 payload back")
		}
	})

	t.Run("Other Statuses Propagate Immediately", func(t *testing.T) {
		collapseBackoff(t)

		transport := ttxtest.NewScriptedTransport(ttxtest.Step{Status: 500})
		gw := newTestGateway(transport)

		_, err := WithRetry(ctx, func(ctx context.Context) (*APIResponse, error) {
			return gw.Request(ctx, models.ToolToggl, "GET", "/me/workspaces", nil, nil)
		}, 5)

		if StatusOf(err) != http.StatusInternalServerError {
			t.Fatalf("expected the 500 to propagate, got %v", err)
		}
		if transport.Calls() != 1 {
			t.Errorf("500 must not be retried, got %d calls", transport.Calls())
		}
	})

	t.Run("Cancelled During Backoff", func(t *testing.T) {
		transport := ttxtest.NewScriptedTransport(ttxtest.Step{Status: 429})
		gw := newTestGateway(transport)

		cancelCtx, cancel := context.WithCancel(ctx)
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()

		_, err := WithRetry(cancelCtx, func(ctx context.Context) (*APIResponse, error) {
			return gw.Request(ctx, models.ToolToggl, "GET", "/me/workspaces", nil, nil)
		}, 5)

		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	})
}

func TestPacer(t *testing.T) {
	t.Run("Zero Delay Never Blocks", func(t *testing.T) {
		pacer := NewPacer(func(models.ToolName) time.Duration { return 0 })

		start := time.Now()
		for range 50 {
			if err := pacer.Wait(context.Background(), models.ToolToggl); err != nil {
				t.Fatalf("wait failed: %v", err)
			}
		}
		if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
			t.Errorf("local mode pacing should be free, took %v", elapsed)
		}
	})

	t.Run("Delay Spaces Requests", func(t *testing.T) {
		pacer := NewPacer(func(models.ToolName) time.Duration { return 20 * time.Millisecond })

		start := time.Now()
		for range 3 {
			if err := pacer.Wait(context.Background(), models.ToolClockify); err != nil {
				t.Fatalf("wait failed: %v", err)
			}
		}
		// First call is free, the next two wait one interval each.
		if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
			t.Errorf("expected at least 40ms of pacing, got %v", elapsed)
		}
	})

	t.Run("Tools Are Paced Independently", func(t *testing.T) {
		pacer := NewPacer(func(tool models.ToolName) time.Duration {
			if tool == models.ToolToggl {
				return time.Minute
			}
			return 0
		})

		// Consume toggl's initial token so it would block next time.
		if err := pacer.Wait(context.Background(), models.ToolToggl); err != nil {
			t.Fatalf("wait failed: %v", err)
		}

		start := time.Now()
		if err := pacer.Wait(context.Background(), models.ToolClockify); err != nil {
			t.Fatalf("wait failed: %v", err)
		}
		if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
			t.Errorf("clockify must not inherit toggl's delay, took %v", elapsed)
		}
	})
}
