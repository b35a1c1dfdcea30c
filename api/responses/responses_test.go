package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/raktarhub/raktarhub-backend/pkg/errors"
	"github.com/raktarhub/raktarhub-backend/pkg/types"
)

func TestWriteErrorMapsCodeToStatus(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeCapacityExceeded, "over the limit").
		WithDetails(map[string]any{"current": 30, "requested": 30, "limit": 50})

	WriteError(context.Background(), nil, rec, err)

	if rec.Code != 409 {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	var payload types.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload.Error.Code != "CAPACITY_EXCEEDED" {
		t.Fatalf("unexpected code %q", payload.Error.Code)
	}
	if payload.Error.Message != "over the limit" {
		t.Fatalf("unexpected message %q", payload.Error.Message)
	}
	if payload.Error.Details == nil {
		t.Fatal("expected details to be forwarded")
	}
}

func TestWriteErrorHidesInternalDetails(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	err := pkgerrors.Wrap(pkgerrors.CodePersistence, errors.New("pq: connection refused"), "writing stock entry")

	WriteError(context.Background(), nil, rec, err)

	if rec.Code != 500 {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var payload types.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload.Error.Message != "storage operation failed" {
		t.Fatalf("internal cause must not leak, got %q", payload.Error.Message)
	}
	if payload.Error.Details != nil {
		t.Fatal("details must be suppressed for internal errors")
	}
}

func TestWriteErrorWrapsUntypedErrors(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec, errors.New("boom"))

	if rec.Code != 500 {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
