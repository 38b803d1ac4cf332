package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mimosaworkshops/testimonial-api/internal/intake"
	"github.com/mimosaworkshops/testimonial-api/internal/testimonial"
	"go.uber.org/zap"
)

type stubGenerator struct {
	outputs testimonial.Outputs
	err     error
}

func (g *stubGenerator) Generate(ctx context.Context, entry testimonial.Entry) (testimonial.Outputs, error) {
	if g.err != nil {
		return testimonial.Outputs{}, g.err
	}
	return g.outputs, nil
}

func completeBundle() testimonial.Outputs {
	return testimonial.Outputs{
		BlogPost:      testimonial.BlogPost{Title: "T", Content: "C"},
		LinkedIn:      testimonial.LinkedInPost{Content: "S"},
		TwitterThread: testimonial.TwitterThread{Tweets: []string{"t1"}},
		Email:         testimonial.ReferralEmail{Subjects: []string{"s1"}, Content: "E"},
	}
}

type testHarness struct {
	handler http.Handler
	store   *testimonial.Store
}

func newHarness(t *testing.T, generator intake.Generator) *testHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := testimonial.NewStore(testimonial.StoreConfig{Backend: testimonial.NewMemoryBackend()})
	if err != nil {
		t.Fatalf("failed to construct store: %v", err)
	}
	manager, err := intake.NewManager(intake.ManagerConfig{
		Store:     store,
		Generator: generator,
		Clock:     func() time.Time { return time.Unix(1700000000, 0).UTC() },
	})
	if err != nil {
		t.Fatalf("failed to construct manager: %v", err)
	}
	handler, err := NewHTTPHandler(Dependencies{Store: store, Intake: manager, Logger: zap.NewNop()})
	if err != nil {
		t.Fatalf("failed to construct handler: %v", err)
	}
	return &testHarness{handler: handler, store: store}
}

func (h *testHarness) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var request *http.Request
	if body == "" {
		request = httptest.NewRequest(method, path, nil)
	} else {
		request = httptest.NewRequest(method, path, strings.NewReader(body))
		request.Header.Set("Content-Type", "application/json")
	}
	recorder := httptest.NewRecorder()
	h.handler.ServeHTTP(recorder, request)
	return recorder
}

func (h *testHarness) beginSession(t *testing.T) string {
	t.Helper()
	recorder := h.do(t, http.MethodPost, "/api/v1/sessions", "")
	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected session creation, got %d: %s", recorder.Code, recorder.Body.String())
	}
	var payload struct {
		SessionID string `json:"session_id"`
		Step      int    `json:"step"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode session payload: %v", err)
	}
	if payload.Step != 1 {
		t.Fatalf("new session must start at step one, got %d", payload.Step)
	}
	return payload.SessionID
}

func TestIntakeFlowEndToEnd(t *testing.T) {
	harness := newHarness(t, &stubGenerator{outputs: completeBundle()})
	sessionID := harness.beginSession(t)

	patch := `{"participantName":"Jane Doe","roleTitle":"Senior Product Manager"}`
	if recorder := harness.do(t, http.MethodPatch, "/api/v1/sessions/"+sessionID, patch); recorder.Code != http.StatusOK {
		t.Fatalf("mutate failed: %d %s", recorder.Code, recorder.Body.String())
	}

	for i := 0; i < 5; i++ {
		if recorder := harness.do(t, http.MethodPost, "/api/v1/sessions/"+sessionID+"/advance", ""); recorder.Code != http.StatusOK {
			t.Fatalf("advance failed: %d", recorder.Code)
		}
	}

	recorder := harness.do(t, http.MethodPost, "/api/v1/sessions/"+sessionID+"/generate", "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("generate failed: %d %s", recorder.Code, recorder.Body.String())
	}
	var entry testimonial.Entry
	if err := json.Unmarshal(recorder.Body.Bytes(), &entry); err != nil {
		t.Fatalf("failed to decode entry: %v", err)
	}
	if entry.Outputs == nil || entry.Outputs.BlogPost.Title != "T" {
		t.Fatalf("expected generated bundle, got %+v", entry.Outputs)
	}

	stored, err := harness.store.GetByID(entry.ID)
	if err != nil {
		t.Fatalf("entry not persisted: %v", err)
	}
	if stored.Outputs.BlogPost.Title != "T" {
		t.Fatalf("persisted bundle mismatch")
	}

	// the session is released after a successful finalize
	if recorder := harness.do(t, http.MethodGet, "/api/v1/sessions/"+sessionID, ""); recorder.Code != http.StatusNotFound {
		t.Fatalf("expected released session, got %d", recorder.Code)
	}
}

func TestGenerateFailureReturnsBadGatewayAndKeepsSession(t *testing.T) {
	harness := newHarness(t, &stubGenerator{err: errors.New("provider down")})
	sessionID := harness.beginSession(t)

	recorder := harness.do(t, http.MethodPost, "/api/v1/sessions/"+sessionID+"/generate", "")
	if recorder.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if !strings.Contains(recorder.Body.String(), "generation_failed") {
		t.Fatalf("unexpected error body: %s", recorder.Body.String())
	}

	// the session survives so the user can edit and retry
	if recorder := harness.do(t, http.MethodGet, "/api/v1/sessions/"+sessionID, ""); recorder.Code != http.StatusOK {
		t.Fatalf("session must survive a failed generation, got %d", recorder.Code)
	}
}

func TestAttachmentsEnforceCapOverHTTP(t *testing.T) {
	harness := newHarness(t, &stubGenerator{outputs: completeBundle()})
	sessionID := harness.beginSession(t)

	body := `{"kind":"screenshot","content":"data:image/png;base64,AAA"}`
	for i := 0; i < 3; i++ {
		recorder := harness.do(t, http.MethodPost, "/api/v1/sessions/"+sessionID+"/attachments", body)
		if recorder.Code != http.StatusOK || !strings.Contains(recorder.Body.String(), `"accepted":true`) {
			t.Fatalf("attachment %d rejected: %d %s", i+1, recorder.Code, recorder.Body.String())
		}
	}

	recorder := harness.do(t, http.MethodPost, "/api/v1/sessions/"+sessionID+"/attachments", body)
	if recorder.Code != http.StatusOK {
		t.Fatalf("over-cap attachment must stay a 200, got %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), `"accepted":false`) {
		t.Fatalf("fourth screenshot must report accepted:false, got %s", recorder.Body.String())
	}

	if recorder := harness.do(t, http.MethodDelete, "/api/v1/sessions/"+sessionID+"/screenshots/9", ""); !strings.Contains(recorder.Body.String(), `"removed":false`) {
		t.Fatalf("out-of-range removal must report removed:false, got %s", recorder.Body.String())
	}
}

func TestAttachmentRejectsUnknownKind(t *testing.T) {
	harness := newHarness(t, &stubGenerator{outputs: completeBundle()})
	sessionID := harness.beginSession(t)

	recorder := harness.do(t, http.MethodPost, "/api/v1/sessions/"+sessionID+"/attachments", `{"kind":"sticker","content":"x"}`)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown kind, got %d", recorder.Code)
	}
}

func TestRetreatAtStepOneCancelsAndReleases(t *testing.T) {
	harness := newHarness(t, &stubGenerator{outputs: completeBundle()})
	sessionID := harness.beginSession(t)

	recorder := harness.do(t, http.MethodPost, "/api/v1/sessions/"+sessionID+"/retreat", "")
	if recorder.Code != http.StatusOK || !strings.Contains(recorder.Body.String(), `"cancelled":true`) {
		t.Fatalf("expected cancellation, got %d %s", recorder.Code, recorder.Body.String())
	}
	if recorder := harness.do(t, http.MethodGet, "/api/v1/sessions/"+sessionID, ""); recorder.Code != http.StatusNotFound {
		t.Fatalf("cancelled session must be gone, got %d", recorder.Code)
	}
}

func TestEntryLookupReportsNotFound(t *testing.T) {
	harness := newHarness(t, &stubGenerator{outputs: completeBundle()})
	recorder := harness.do(t, http.MethodGet, "/api/v1/entries/missing", "")
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), "not_found") {
		t.Fatalf("unexpected body: %s", recorder.Body.String())
	}
}

func TestEntryDeleteIsIdempotent(t *testing.T) {
	harness := newHarness(t, &stubGenerator{outputs: completeBundle()})
	seedEntry(t, harness.store, "a1", "Jane Doe", "PM")

	if recorder := harness.do(t, http.MethodDelete, "/api/v1/entries/a1", ""); recorder.Code != http.StatusNoContent {
		t.Fatalf("delete failed: %d", recorder.Code)
	}
	if recorder := harness.do(t, http.MethodDelete, "/api/v1/entries/a1", ""); recorder.Code != http.StatusNoContent {
		t.Fatalf("second delete must be a no-op: %d", recorder.Code)
	}
	if recorder := harness.do(t, http.MethodGet, "/api/v1/entries/a1", ""); recorder.Code != http.StatusNotFound {
		t.Fatalf("deleted entry must be gone, got %d", recorder.Code)
	}
}

func TestEntriesListFiltersByNameAndRole(t *testing.T) {
	harness := newHarness(t, &stubGenerator{outputs: completeBundle()})
	seedEntry(t, harness.store, "a1", "Jane Doe", "Senior Product Manager")
	seedEntry(t, harness.store, "a2", "John Smith", "Technical Founder")

	recorder := harness.do(t, http.MethodGet, "/api/v1/entries?q=jane", "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("list failed: %d", recorder.Code)
	}
	var payload struct {
		Entries []testimonial.Entry `json:"entries"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if len(payload.Entries) != 1 || payload.Entries[0].ID != "a1" {
		t.Fatalf("expected only a1, got %+v", payload.Entries)
	}

	recorder = harness.do(t, http.MethodGet, "/api/v1/entries?q=founder", "")
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if len(payload.Entries) != 1 || payload.Entries[0].ID != "a2" {
		t.Fatalf("role filter mismatch, got %+v", payload.Entries)
	}
}

func TestEntryEditReopensIntakeWithSeededDraft(t *testing.T) {
	harness := newHarness(t, &stubGenerator{outputs: completeBundle()})
	seedEntry(t, harness.store, "a1", "Jane Doe", "PM")

	recorder := harness.do(t, http.MethodPost, "/api/v1/entries/a1/edit", "")
	if recorder.Code != http.StatusCreated {
		t.Fatalf("edit failed: %d %s", recorder.Code, recorder.Body.String())
	}
	var payload sessionStatePayload
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode session payload: %v", err)
	}
	if payload.SessionID != "a1" {
		t.Fatalf("edit session must reuse the entry identifier, got %q", payload.SessionID)
	}
	if payload.Draft.ParticipantName != "Jane Doe" {
		t.Fatalf("draft not seeded from the stored entry: %+v", payload.Draft)
	}
}

func TestEntrySectionRendersPlainText(t *testing.T) {
	harness := newHarness(t, &stubGenerator{outputs: completeBundle()})
	entry := testimonial.Entry{
		ID:        "a1",
		CreatedAt: time.Unix(1700000000, 0).UTC(),
		Tone:      testimonial.ToneProfessional,
		Length:    testimonial.LengthMedium,
		CTAStyle:  testimonial.CTAStyleSoft,
	}
	bundle := completeBundle()
	entry.Outputs = &bundle
	if err := harness.store.Upsert(entry); err != nil {
		t.Fatalf("seed upsert failed: %v", err)
	}

	recorder := harness.do(t, http.MethodGet, "/api/v1/entries/a1/sections/blog", "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("section render failed: %d", recorder.Code)
	}
	if recorder.Body.String() != "# T\n\nC" {
		t.Fatalf("unexpected section text: %q", recorder.Body.String())
	}

	if recorder := harness.do(t, http.MethodGet, "/api/v1/entries/a1/sections/tiktok", ""); recorder.Code != http.StatusBadRequest {
		t.Fatalf("unknown section must be a 400, got %d", recorder.Code)
	}
}

func TestEntrySectionRequiresFinalizedEntry(t *testing.T) {
	harness := newHarness(t, &stubGenerator{outputs: completeBundle()})
	seedEntry(t, harness.store, "a1", "Jane Doe", "PM")

	recorder := harness.do(t, http.MethodGet, "/api/v1/entries/a1/sections/blog", "")
	if recorder.Code != http.StatusConflict {
		t.Fatalf("draft export must be a 409, got %d: %s", recorder.Code, recorder.Body.String())
	}
}

func seedEntry(t *testing.T, store *testimonial.Store, id, name, role string) {
	t.Helper()
	entry := testimonial.Entry{
		ID:              id,
		CreatedAt:       time.Unix(1700000000, 0).UTC(),
		ParticipantName: name,
		RoleTitle:       role,
		Tone:            testimonial.ToneProfessional,
		Length:          testimonial.LengthMedium,
		CTAStyle:        testimonial.CTAStyleSoft,
	}
	if err := store.Upsert(entry); err != nil {
		t.Fatalf("seed upsert failed: %v", err)
	}
}
