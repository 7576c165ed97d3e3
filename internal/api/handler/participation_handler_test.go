package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/yogastudio/booking/internal/core/domain"
)

type stubParticipationService struct {
	participateFn   func(ctx context.Context, p domain.Principal, sessionID, userID int64) (*domain.Session, error)
	unparticipateFn func(ctx context.Context, p domain.Principal, sessionID, userID int64) (*domain.Session, error)
}

func (s *stubParticipationService) Participate(ctx context.Context, p domain.Principal, sessionID, userID int64) (*domain.Session, error) {
	return s.participateFn(ctx, p, sessionID, userID)
}

func (s *stubParticipationService) UnParticipate(ctx context.Context, p domain.Principal, sessionID, userID int64) (*domain.Session, error) {
	return s.unparticipateFn(ctx, p, sessionID, userID)
}

func participateContext(method, sessionID, userID string, p domain.Principal) (echo.Context, *httptest.ResponseRecorder) {
	c, rec := newContext(method, "/api/session/"+sessionID+"/participate/"+userID, "", &p)
	c.SetParamNames("id", "userId")
	c.SetParamValues(sessionID, userID)
	return c, rec
}

func TestParticipationHandler_Participate(t *testing.T) {
	svc := &stubParticipationService{
		participateFn: func(_ context.Context, p domain.Principal, sessionID, userID int64) (*domain.Session, error) {
			if p.ID != 7 || sessionID != 3 || userID != 7 {
				t.Fatalf("unexpected call: %+v %d %d", p, sessionID, userID)
			}
			return sampleSession(7), nil
		},
	}
	c, rec := participateContext(http.MethodPost, "3", "7", domain.Principal{ID: 7})

	if err := NewParticipationHandler(svc).Participate(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Users) != 1 || resp.Users[0] != 7 {
		t.Fatalf("unexpected users: %v", resp.Users)
	}
}

func TestParticipationHandler_Conflict(t *testing.T) {
	svc := &stubParticipationService{
		unparticipateFn: func(context.Context, domain.Principal, int64, int64) (*domain.Session, error) {
			return nil, domain.ErrNotParticipating
		},
	}
	c, _ := participateContext(http.MethodDelete, "3", "7", domain.Principal{ID: 7})

	if err := NewParticipationHandler(svc).UnParticipate(c); !errors.Is(err, domain.ErrNotParticipating) {
		t.Fatalf("expected not participating, got %v", err)
	}
}

func TestParticipationHandler_BadUserID(t *testing.T) {
	c, _ := participateContext(http.MethodPost, "3", "me", domain.Principal{ID: 7})

	var he *echo.HTTPError
	if err := NewParticipationHandler(&stubParticipationService{}).Participate(c); !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}
