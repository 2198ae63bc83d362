package generator

import (
	"errors"
	"testing"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/wrenhealth/concierge/agent/contract"
	statex "github.com/wrenhealth/concierge/agent/state"
)

func TestToToolRequests(t *testing.T) {
	t.Parallel()

	reqs, err := toToolRequests([]schema.ToolCall{
		{Function: schema.FunctionCall{Name: "get_pharmacy_locations", Arguments: `{"location":"95054","count":3}`}},
		{Function: schema.FunctionCall{Name: "get_current_time_info", Arguments: ""}},
	})
	if err != nil {
		t.Fatalf("toToolRequests() error = %v", err)
	}
	if len(reqs) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(reqs))
	}
	if reqs[0].Tool != "get_pharmacy_locations" || reqs[0].Args["location"] != "95054" {
		t.Fatalf("unexpected first request: %+v", reqs[0])
	}
	if len(reqs[1].Args) != 0 {
		t.Fatalf("empty arguments should decode to an empty map, got %+v", reqs[1].Args)
	}
}

func TestToToolRequestsRejectsBadCalls(t *testing.T) {
	t.Parallel()

	_, err := toToolRequests([]schema.ToolCall{
		{Function: schema.FunctionCall{Name: "  "}},
	})
	if !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("expected ErrSchemaViolation for empty name, got %v", err)
	}

	_, err = toToolRequests([]schema.ToolCall{
		{Function: schema.FunctionCall{Name: "get_current_time_info", Arguments: "{broken"}},
	})
	if !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("expected ErrSchemaViolation for bad args, got %v", err)
	}
}

func TestRenderTranscriptWindow(t *testing.T) {
	t.Parallel()

	messages := make([]statex.Message, 0, 30)
	for i := 0; i < 30; i++ {
		messages = append(messages, statex.Message{Seq: i, RoleID: "User", Content: "m"})
	}

	entries := renderTranscript(messages, 20)
	if len(entries) != 20 {
		t.Fatalf("expected window of 20, got %d", len(entries))
	}

	all := renderTranscript(messages[:5], 20)
	if len(all) != 5 {
		t.Fatalf("short transcripts should pass through, got %d", len(all))
	}
}
