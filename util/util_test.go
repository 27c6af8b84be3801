package util

import (
	"net/http"
	"testing"

	"github.com/truckersblacklist/blacklist_api/util/values"
)

func TestIsEmail(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  bool
	}{
		{"plain address", "driver@example.com", true},
		{"subdomain", "driver@mail.example.com", true},
		{"plus tag", "driver+dispatch@example.com", true},
		{"missing at", "driver.example.com", false},
		{"missing domain", "driver@", false},
		{"blank", "", false},
		{"spaces", "driver @example.com", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsEmail(tc.input); got != tc.want {
				t.Errorf("IsEmail(%q) = %v; want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestNotBlank(t *testing.T) {
	if NotBlank("   ") {
		t.Error("NotBlank of whitespace = true")
	}
	if !NotBlank("  x ") {
		t.Error("NotBlank of non-empty = false")
	}
}

func TestStatusCode(t *testing.T) {
	testCases := []struct {
		status string
		want   int
	}{
		{values.Success, http.StatusOK},
		{values.Created, http.StatusCreated},
		{values.BadRequestBody, http.StatusBadRequest},
		{values.Unprocessable, http.StatusUnprocessableEntity},
		{values.Conflict, http.StatusConflict},
		{values.NotFound, http.StatusNotFound},
		{values.NotAuthorised, http.StatusUnauthorized},
		{values.TokenExpired, http.StatusUnauthorized},
		{values.Error, http.StatusInternalServerError},
		{"anything-else", http.StatusOK},
	}

	for _, tc := range testCases {
		if got := StatusCode(tc.status); got != tc.want {
			t.Errorf("StatusCode(%q) = %d; want %d", tc.status, got, tc.want)
		}
	}
}
