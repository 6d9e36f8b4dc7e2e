package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/tbourn/go-story-backend/internal/domain"
	"github.com/tbourn/go-story-backend/internal/services"
)

func TestCreateShare_BadID_NotFound_Success(t *testing.T) {
	env := newTestEnv(t)

	// Bad id -> 400
	if w := env.do(http.MethodPost, "/stories/abc/share", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id -> %d", w.Code)
	}

	// Unknown story -> 404
	if w := env.do(http.MethodPost, "/stories/9999/share", ""); w.Code != http.StatusNotFound {
		t.Fatalf("unknown story -> %d", w.Code)
	}

	st := env.seedStory(t, validStoryText, "adventure")

	// Empty body -> 201 with token, no expiry (no default TTL configured).
	w := env.do(http.MethodPost, fmt.Sprintf("/stories/%d/share", st.ID), "")
	if w.Code != http.StatusCreated {
		t.Fatalf("share -> %d body=%s", w.Code, w.Body.String())
	}
	var sh domain.Share
	if err := json.Unmarshal(w.Body.Bytes(), &sh); err != nil {
		t.Fatalf("json: %v", err)
	}
	if sh.Token == "" || sh.StoryID != st.ID || sh.ExpiresAt != nil {
		t.Fatalf("unexpected share: %+v", sh)
	}

	// Explicit TTL -> expiry in the future.
	w = env.do(http.MethodPost, fmt.Sprintf("/stories/%d/share", st.ID), `{"ttl_seconds":3600}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("share ttl -> %d", w.Code)
	}
	var timed domain.Share
	if err := json.Unmarshal(w.Body.Bytes(), &timed); err != nil {
		t.Fatalf("json: %v", err)
	}
	if timed.ExpiresAt == nil || !timed.ExpiresAt.After(time.Now().UTC()) {
		t.Fatalf("expiry not applied: %+v", timed.ExpiresAt)
	}
}

func TestResolveShare_RoundTrip_and_Failures(t *testing.T) {
	env := newTestEnv(t)
	st := env.seedStory(t, validStoryText, "adventure")

	sh, err := env.share.Create(context.Background(), st.ID, nil)
	if err != nil {
		t.Fatalf("create share: %v", err)
	}

	// Valid token -> 200 with story payload.
	w := env.do(http.MethodGet, "/shared/"+sh.Token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("resolve -> %d body=%s", w.Code, w.Body.String())
	}
	var out services.SharedStory
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out.Story == nil || out.Story.ID != st.ID {
		t.Fatalf("story missing from payload: %+v", out)
	}
	if out.Share == nil || out.Share.AccessCount != 1 {
		t.Fatalf("access not counted: %+v", out.Share)
	}

	// Unknown token -> 404.
	if w := env.do(http.MethodGet, "/shared/deadbeefdeadbeef", ""); w.Code != http.StatusNotFound {
		t.Fatalf("unknown token -> %d", w.Code)
	}

	// Zero TTL -> immediately unresolvable.
	w = env.do(http.MethodPost, fmt.Sprintf("/stories/%d/share", st.ID), `{"ttl_seconds":0}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("dead share -> %d", w.Code)
	}
	var dead domain.Share
	if err := json.Unmarshal(w.Body.Bytes(), &dead); err != nil {
		t.Fatalf("json: %v", err)
	}
	if w := env.do(http.MethodGet, "/shared/"+dead.Token, ""); w.Code != http.StatusNotFound {
		t.Fatalf("expired token -> %d", w.Code)
	}
}

func TestResolveShare_IncludesAudioMetadata(t *testing.T) {
	env := newTestEnv(t)
	st := env.seedStory(t, validStoryText, "adventure")
	if _, err := env.audio.Save(context.Background(), st.ID, "narration.mp3", 128, 4.0, "openai", "alloy", nil); err != nil {
		t.Fatalf("save audio: %v", err)
	}
	sh, err := env.share.Create(context.Background(), st.ID, nil)
	if err != nil {
		t.Fatalf("create share: %v", err)
	}

	w := env.do(http.MethodGet, "/shared/"+sh.Token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("resolve -> %d", w.Code)
	}
	var out services.SharedStory
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out.Audio == nil || out.Audio.Filename != "narration.mp3" {
		t.Fatalf("audio metadata missing: %+v", out.Audio)
	}
}

func TestRevokeShare_NotFound_Success(t *testing.T) {
	env := newTestEnv(t)

	// Unknown token -> 404
	if w := env.do(http.MethodDelete, "/shares/deadbeefdeadbeef", ""); w.Code != http.StatusNotFound {
		t.Fatalf("unknown token -> %d", w.Code)
	}

	st := env.seedStory(t, validStoryText, "adventure")
	sh, err := env.share.Create(context.Background(), st.ID, nil)
	if err != nil {
		t.Fatalf("create share: %v", err)
	}

	// Revoke -> 204, then resolution behaves as unknown.
	if w := env.do(http.MethodDelete, "/shares/"+sh.Token, ""); w.Code != http.StatusNoContent {
		t.Fatalf("revoke -> %d", w.Code)
	}
	if w := env.do(http.MethodGet, "/shared/"+sh.Token, ""); w.Code != http.StatusNotFound {
		t.Fatalf("resolve revoked -> %d", w.Code)
	}
}
