package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func momentRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewMomentHandler(nil, nil, nil)
	r.GET("/v1/moments", h.Create)
	r.POST("/v1/moments", h.Create)
	return r
}

func TestCreateMomentMissingUserID(t *testing.T) {
	r := momentRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/moments?timeLimit=60", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "userID") {
		t.Errorf("body = %s; want userID error", w.Body.String())
	}
}

func TestCreateMomentMissingTimeLimit(t *testing.T) {
	r := momentRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/moments?userID=u1", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want 400", w.Code)
	}
	// The userID must have been accepted; only the time limit is missing.
	if !strings.Contains(w.Body.String(), "timeLimit") {
		t.Errorf("body = %s; want timeLimit error", w.Body.String())
	}
}

func TestCreateMomentParameterCasing(t *testing.T) {
	r := momentRouter()

	// Lowercase d is a different key and must not be recognized.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/moments?userId=u1&timeLimit=60", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "userID") {
		t.Errorf("body = %s; want userID error", w.Body.String())
	}
}

func TestCreateMomentMissingTimeLimitJSON(t *testing.T) {
	r := momentRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/moments", strings.NewReader(`{"userID":"u1"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "timeLimit") {
		t.Errorf("body = %s; want timeLimit error", w.Body.String())
	}
}

func TestCreateMomentInvalidTimeLimit(t *testing.T) {
	r := momentRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/moments?userID=u1&timeLimit=soon", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want 400", w.Code)
	}
}

func TestCreateMomentMalformedJSON(t *testing.T) {
	r := momentRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/moments", nil)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want 400", w.Code)
	}
}
