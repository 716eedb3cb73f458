package handler

import (
	"net/http"
	"testing"
)

func TestSignupAndLoginFlow(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/users/signup", "", map[string]string{
		"email":    "alice@example.com",
		"username": "alice",
		"password": "Password123",
		"language": "en",
	})
	assertStatus(t, resp, http.StatusOK)
	var signup struct {
		Message string `json:"message"`
		UserID  int64  `json:"userId"`
	}
	decodeBody(t, resp, &signup)
	if signup.UserID == 0 {
		t.Fatalf("expected a user id in the signup response")
	}

	resp = env.do(t, http.MethodPost, "/api/users/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "Password123",
	})
	assertStatus(t, resp, http.StatusOK)
	var login LoginResponse
	decodeBody(t, resp, &login)
	if login.Token == "" {
		t.Fatalf("expected a token")
	}
	if login.UserRole != "USER" {
		t.Fatalf("expected default role USER, got %q", login.UserRole)
	}
	if login.Username != "alice" {
		t.Fatalf("unexpected username %q", login.Username)
	}

	// The issued token resolves back to the same user.
	userID, ok := env.tokens.Validate(login.Token)
	if !ok || userID != signup.UserID {
		t.Fatalf("token subject %d does not match signup id %d", userID, signup.UserID)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	payload := map[string]string{
		"email":    "alice@example.com",
		"username": "alice",
		"password": "Password123",
	}
	resp := env.do(t, http.MethodPost, "/api/users/signup", "", payload)
	assertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	payload["username"] = "alice2"
	resp = env.do(t, http.MethodPost, "/api/users/signup", "", payload)
	assertStatus(t, resp, http.StatusBadRequest)
	resp.Body.Close()
}

func TestSignupMissingFields(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/users/signup", "", map[string]string{
		"email": "alice@example.com",
	})
	assertStatus(t, resp, http.StatusBadRequest)
	resp.Body.Close()
}

func TestLoginFailureIsGenericAnd400(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/users/signup", "", map[string]string{
		"email":    "alice@example.com",
		"username": "alice",
		"password": "Password123",
	})
	assertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	var unknown, wrong ErrorResponse

	resp = env.do(t, http.MethodPost, "/api/users/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "Password123",
	})
	assertStatus(t, resp, http.StatusBadRequest)
	decodeBody(t, resp, &unknown)

	resp = env.do(t, http.MethodPost, "/api/users/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	assertStatus(t, resp, http.StatusBadRequest)
	decodeBody(t, resp, &wrong)

	if unknown.Error != wrong.Error {
		t.Fatalf("login failures must be indistinguishable: %q vs %q", unknown.Error, wrong.Error)
	}
}
