package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"

	"ttx/internal/models"
	ttxtest "ttx/internal/testing"
)

type pageItem struct {
	ID string `json:"id"`
}

func pageBody(count, offset int) string {
	items := make([]string, count)
	for i := 0; i < count; i++ {
		items[i] = fmt.Sprintf(`{"id":"r%d"}`, offset+i)
	}
	return "[" + strings.Join(items, ",") + "]"
}

func newTestClient(transport *ttxtest.ScriptedTransport) *Client {
	gw := newTestGateway(transport)
	pacer := NewPacer(func(models.ToolName) time.Duration { return 0 })
	return NewClient(gw, pacer, DefaultMaxAttempts, nil)
}

func TestFetchAllPages(t *testing.T) {
	ctx := context.Background()

	t.Run("Partial Last Page", func(t *testing.T) {
		// N=250, P=100: three requests, the short third page terminates.
		transport := ttxtest.NewScriptedTransport(
			ttxtest.Step{Status: 200, Body: pageBody(100, 0)},
			ttxtest.Step{Status: 200, Body: pageBody(100, 100)},
			ttxtest.Step{Status: 200, Body: pageBody(50, 200)},
		)
		c := newTestClient(transport)

		records, err := FetchAllPages[pageItem](ctx, c, models.ToolClockify, "/workspaces/w/clients", nil)
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		if len(records) != 250 {
			t.Errorf("expected 250 records, got %d", len(records))
		}
		if transport.Calls() != 3 {
			t.Errorf("expected 3 requests, got %d", transport.Calls())
		}
	})

	t.Run("Exact Multiple Issues Extra Empty Page", func(t *testing.T) {
		// N=200, P=100: the extra empty-page request is itself the stop.
		transport := ttxtest.NewScriptedTransport(
			ttxtest.Step{Status: 200, Body: pageBody(100, 0)},
			ttxtest.Step{Status: 200, Body: pageBody(100, 100)},
			ttxtest.Step{Status: 200, Body: `[]`},
		)
		c := newTestClient(transport)

		records, err := FetchAllPages[pageItem](ctx, c, models.ToolClockify, "/workspaces/w/clients", nil)
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		if len(records) != 200 {
			t.Errorf("expected 200 records, got %d", len(records))
		}
		if transport.Calls() != 3 {
			t.Errorf("expected 3 requests (2 full + 1 empty), got %d", transport.Calls())
		}
	})

	t.Run("Empty Result", func(t *testing.T) {
		transport := ttxtest.NewScriptedTransport(ttxtest.Step{Status: 200, Body: `[]`})
		c := newTestClient(transport)

		records, err := FetchAllPages[pageItem](ctx, c, models.ToolClockify, "/workspaces/w/clients", nil)
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		if len(records) != 0 {
			t.Errorf("expected no records, got %d", len(records))
		}
		if transport.Calls() != 1 {
			t.Errorf("expected exactly 1 request, got %d", transport.Calls())
		}
	})

	t.Run("Page Parameters", func(t *testing.T) {
		transport := ttxtest.NewScriptedTransport(ttxtest.Step{Status: 200, Body: `[]`})
		c := newTestClient(transport)

		if _, err := FetchAllPages[pageItem](ctx, c, models.ToolClockify, "/workspaces/w/tags", nil); err != nil {
			t.Fatalf("fetch failed: %v", err)
		}

		query := transport.Requests[0].URL.Query()
		if query.Get("page") != "1" || query.Get("page-size") != "100" {
			t.Errorf("unexpected paging params: %s", transport.Requests[0].URL.RawQuery)
		}
	})

	t.Run("Extra Query Preserved Across Pages", func(t *testing.T) {
		transport := ttxtest.NewScriptedTransport(
			ttxtest.Step{Status: 200, Body: pageBody(100, 0)},
			ttxtest.Step{Status: 200, Body: `[]`},
		)
		c := newTestClient(transport)

		extra := url.Values{"start": {"2024-01-01T00:00:00Z"}}
		if _, err := FetchAllPages[pageItem](ctx, c, models.ToolClockify, "/workspaces/w/user/u/time-entries", extra); err != nil {
			t.Fatalf("fetch failed: %v", err)
		}

		for i, req := range transport.Requests {
			if req.URL.Query().Get("start") != "2024-01-01T00:00:00Z" {
				t.Errorf("page %d lost the extra query param", i+1)
			}
		}
		if transport.Requests[1].URL.Query().Get("page") != "2" {
			t.Error("second request should ask for page 2")
		}
	})

	t.Run("Error Propagates", func(t *testing.T) {
		transport := ttxtest.NewScriptedTransport(ttxtest.Step{Status: 500})
		c := newTestClient(transport)

		if _, err := FetchAllPages[pageItem](ctx, c, models.ToolClockify, "/workspaces/w/clients", nil); err == nil {
			t.Fatal("expected the 500 to propagate")
		}
	})
}
