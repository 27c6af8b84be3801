package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func providerStub(t *testing.T, status int, body interface{}) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("missing api key on %s", r.URL)
		}
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)

	return &Client{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Client:  srv.Client(),
	}
}

func providerErrorBody(code string) map[string]interface{} {
	return map[string]interface{}{
		"error": map[string]interface{}{"message": code},
	}
}

func TestSignUpMapsProviderErrors(t *testing.T) {
	tests := []struct {
		code string
		want Kind
	}{
		{"EMAIL_EXISTS", KindEmailInUse},
		{"WEAK_PASSWORD : Password should be at least 6 characters", KindWeakCredential},
		{"INVALID_EMAIL", KindInvalidFormat},
		{"INVALID_LOGIN_CREDENTIALS", KindWrongCredential},
		{"EMAIL_NOT_FOUND", KindNotFound},
		{"TOO_MANY_ATTEMPTS_TRY_LATER", KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			c := providerStub(t, http.StatusBadRequest, providerErrorBody(tt.code))

			_, err := c.SignUp(context.Background(), "driver@example.com", "hunter2")
			var idErr *Error
			if !errors.As(err, &idErr) {
				t.Fatalf("got %v, want *identity.Error", err)
			}
			if idErr.Kind != tt.want {
				t.Errorf("kind = %v, want %v", idErr.Kind, tt.want)
			}
			if idErr.Message() == "" {
				t.Error("empty user-facing message")
			}
		})
	}
}

func TestPhoneCodeErrorMapping(t *testing.T) {
	tests := []struct {
		code string
		want Kind
	}{
		{"INVALID_CODE", KindCodeInvalid},
		{"CODE_EXPIRED", KindCodeExpired},
		{"SESSION_EXPIRED", KindCodeExpired},
		{"INVALID_SESSION_INFO", KindCodeInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			c := providerStub(t, http.StatusBadRequest, providerErrorBody(tt.code))

			_, err := c.VerifyPhoneCode(context.Background(), "session-info", "123456")
			var idErr *Error
			if !errors.As(err, &idErr) {
				t.Fatalf("got %v, want *identity.Error", err)
			}
			if idErr.Kind != tt.want {
				t.Errorf("kind = %v, want %v", idErr.Kind, tt.want)
			}
		})
	}
}

func TestSignInAnonymously(t *testing.T) {
	c := providerStub(t, http.StatusOK, map[string]interface{}{
		"localId":      "anon-123",
		"idToken":      "id-token",
		"refreshToken": "refresh-token",
	})

	sess, err := c.SignInAnonymously(context.Background())
	if err != nil {
		t.Fatalf("SignInAnonymously: %v", err)
	}
	if sess.UserID != "anon-123" {
		t.Errorf("userID = %q, want anon-123", sess.UserID)
	}
	if !sess.Anonymous {
		t.Error("session not flagged anonymous")
	}
}

func TestSignInReturnsAccount(t *testing.T) {
	c := providerStub(t, http.StatusOK, map[string]interface{}{
		"localId": "user-9",
		"email":   "driver@example.com",
		"idToken": "id-token",
	})

	sess, err := c.SignIn(context.Background(), "driver@example.com", "hunter2")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if sess.UserID != "user-9" || sess.Email != "driver@example.com" {
		t.Errorf("session = %+v", sess)
	}
	if sess.Anonymous {
		t.Error("password session flagged anonymous")
	}
}

func TestProviderGarbageIsUnavailable(t *testing.T) {
	c := providerStub(t, http.StatusBadGateway, "not json at all")

	_, err := c.SignIn(context.Background(), "driver@example.com", "hunter2")
	var idErr *Error
	if !errors.As(err, &idErr) {
		t.Fatalf("got %v, want *identity.Error", err)
	}
	if idErr.Kind != KindUnavailable {
		t.Errorf("kind = %v, want KindUnavailable", idErr.Kind)
	}
}
