package rest

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/truckersblacklist/blacklist_api/config"
	"github.com/truckersblacklist/blacklist_api/util"
)

func testAPI() *API {
	return &API{
		Config: &config.Config{
			JwtSecret:  "test-secret",
			JwtExpires: "15m",
		},
	}
}

func TestTokenRoundTrip(t *testing.T) {
	api := testAPI()

	token, _, err := api.createToken("user-9")
	if err != nil {
		t.Fatalf("createToken: %v", err)
	}

	claims, err := api.verifyToken(token)
	if err != nil {
		t.Fatalf("verifyToken: %v", err)
	}
	if claims.UserID != "user-9" {
		t.Errorf("subject = %q, want user-9", claims.UserID)
	}
}

func TestVerifyTokenRejectsWrongSecret(t *testing.T) {
	api := testAPI()
	token, _, err := api.createToken("user-9")
	if err != nil {
		t.Fatalf("createToken: %v", err)
	}

	other := testAPI()
	other.Config.JwtSecret = "different-secret"
	if _, err := other.verifyToken(token); err == nil {
		t.Error("token signed with another secret verified")
	}
}

func TestRequireLogin(t *testing.T) {
	api := testAPI()
	token, _, err := api.createToken("user-9")
	if err != nil {
		t.Fatalf("createToken: %v", err)
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := util.GetUserIDFromContext(r.Context())
		if err != nil {
			t.Errorf("user id missing from context: %v", err)
		}
		if userID != "user-9" {
			t.Errorf("user id = %q, want user-9", userID)
		}
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic " + token, http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-token", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/reports", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			api.RequireLogin(next).ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
