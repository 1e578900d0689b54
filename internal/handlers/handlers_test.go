package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"chatserver-backend/internal/database"
	"chatserver-backend/internal/models"
	"chatserver-backend/internal/repositories"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &models.ConfigFile{
		SelfContained: true,
		DatabaseURL:   ":memory:",
	}

	db, err := database.Setup(cfg)
	if err != nil {
		t.Fatalf("setting up test database: %v", err)
	}

	userRepo := repositories.NewUserRepository(db)
	serverRepo := repositories.NewServerRepository(db)
	memberRepo := repositories.NewServerMemberRepository(db)
	channelRepo := repositories.NewChannelRepository(db)
	messageRepo := repositories.NewMessageRepository(db)
	channelRepo.AttachMessageRepository(messageRepo)
	dmRepo := repositories.NewDirectMessageRepository(db, channelRepo)

	router := Setup(cfg, zap.NewNop().Sugar(), Repositories{
		Users:    userRepo,
		Servers:  serverRepo,
		Members:  memberRepo,
		Channels: channelRepo,
		Messages: messageRepo,
		Dms:      dmRepo,
	})

	ts := httptest.NewServer(router)
	t.Cleanup(func() {
		ts.Close()
		db.Close()
	})

	return ts
}

type testEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *string         `json:"error"`
}

func doJSON(t *testing.T, method, url string, body any) (int, testEnvelope, string) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	var env testEnvelope
	if err := json.NewDecoder(io.TeeReader(resp.Body, &buf)).Decode(&env); err != nil {
		t.Fatalf("decoding response: %v", err)
	}

	return resp.StatusCode, env, buf.String()
}

func createUser(t *testing.T, ts *httptest.Server, name, pass string) models.UserResponse {
	t.Helper()

	status, env, _ := doJSON(t, http.MethodPost, ts.URL+"/api/users/create", map[string]any{
		"username": name,
		"email":    fmt.Sprintf("%s@example.com", name),
		"password": pass,
	})
	if status != http.StatusCreated || !env.Success {
		t.Fatalf("creating user %s: status %d, envelope %+v", name, status, env)
	}

	var user models.UserResponse
	if err := json.Unmarshal(env.Data, &user); err != nil {
		t.Fatalf("decoding user: %v", err)
	}
	return user
}

func TestCreateUserEnvelope(t *testing.T) {
	ts := newTestServer(t)

	status, env, raw := doJSON(t, http.MethodPost, ts.URL+"/api/users/create", map[string]any{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "secret-password",
	})

	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}
	if !env.Success {
		t.Fatal("expected success envelope")
	}
	if env.Error != nil {
		t.Errorf("expected null error, got %q", *env.Error)
	}
	if strings.Contains(raw, "secret-password") || strings.Contains(raw, "argon2id") {
		t.Error("response leaks credential material")
	}
	if !strings.Contains(raw, `"error":null`) {
		t.Errorf("expected explicit null error field, body: %s", raw)
	}
}

func TestCreateUserValidation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing username", map[string]any{"email": "a@example.com", "password": "longenough"}},
		{"bad email", map[string]any{"username": "alice", "email": "nope", "password": "longenough"}},
		{"short password", map[string]any{"username": "alice", "email": "a@example.com", "password": "abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env, _ := doJSON(t, http.MethodPost, ts.URL+"/api/users/create", tt.body)
			if status != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", status)
			}
			if env.Success {
				t.Error("expected failure envelope")
			}
			if env.Error == nil {
				t.Error("expected an error message")
			}
		})
	}
}

func TestDuplicateUsernameOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	createUser(t, ts, "alice", "secret-password")

	status, env, _ := doJSON(t, http.MethodPost, ts.URL+"/api/users/create", map[string]any{
		"username": "alice",
		"email":    "other@example.com",
		"password": "secret-password",
	})

	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if env.Error == nil || *env.Error != "Username already taken" {
		t.Errorf("unexpected error message: %v", env.Error)
	}
}

func TestLoginNeutrality(t *testing.T) {
	ts := newTestServer(t)

	createUser(t, ts, "alice", "correct-password")

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"unknown user", "nobody", "whatever-pass"},
		{"wrong password", "alice", "wrong-password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env, _ := doJSON(t, http.MethodPost, ts.URL+"/api/login", map[string]any{
				"username": tt.username,
				"password": tt.password,
			})

			// both cases must be indistinguishable
			if status != http.StatusOK {
				t.Errorf("expected 200, got %d", status)
			}
			if env.Success {
				t.Error("expected failure envelope")
			}
			if env.Error == nil || *env.Error != "Username or password incorrect." {
				t.Errorf("unexpected error message: %v", env.Error)
			}
		})
	}

	t.Run("correct credentials", func(t *testing.T) {
		status, env, raw := doJSON(t, http.MethodPost, ts.URL+"/api/login", map[string]any{
			"username": "alice",
			"password": "correct-password",
		})
		if status != http.StatusOK || !env.Success {
			t.Fatalf("expected successful login, status %d envelope %+v", status, env)
		}
		if strings.Contains(raw, "argon2id") {
			t.Error("login response leaks the password digest")
		}
	})
}

func TestUserPartialUpdateOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	user := createUser(t, ts, "alice", "secret-password")

	status, env, _ := doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/users/%d", ts.URL, user.UserID), map[string]any{
		"status": "online",
	})
	if status != http.StatusOK || !env.Success {
		t.Fatalf("update failed: status %d, envelope %+v", status, env)
	}

	var updated models.UserResponse
	if err := json.Unmarshal(env.Data, &updated); err != nil {
		t.Fatalf("decoding user: %v", err)
	}

	if updated.Status != "online" {
		t.Errorf("expected status online, got %q", updated.Status)
	}
	// untouched fields survive the merge
	if updated.Username != "alice" || updated.Email != "alice@example.com" {
		t.Errorf("merge clobbered fields: %+v", updated)
	}
}

func TestNotFoundPaths(t *testing.T) {
	ts := newTestServer(t)

	urls := []string{
		"/api/users/9999",
		"/api/servers/9999",
		"/api/channels/9999",
	}

	for _, path := range urls {
		t.Run(path, func(t *testing.T) {
			status, env, _ := doJSON(t, http.MethodGet, ts.URL+path, nil)
			if status != http.StatusNotFound {
				t.Errorf("expected 404, got %d", status)
			}
			if env.Success {
				t.Error("expected failure envelope")
			}
		})
	}
}

func TestDeleteMissingOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	paths := []string{
		"/api/users/9999",
		"/api/servers/9999",
		"/api/channels/9999",
		"/api/messages/9999",
		"/api/dm/9999",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			status, env, _ := doJSON(t, http.MethodDelete, ts.URL+path, nil)
			if status != http.StatusNotFound {
				t.Errorf("expected 404, got %d", status)
			}
			if env.Success {
				t.Error("expected failure envelope")
			}
			if env.Error == nil {
				t.Error("expected an error message")
			}
		})
	}

	t.Run("second delete of a removed user", func(t *testing.T) {
		user := createUser(t, ts, "gone", "secret-password")
		url := fmt.Sprintf("%s/api/users/%d", ts.URL, user.UserID)

		status, env, _ := doJSON(t, http.MethodDelete, url, nil)
		if status != http.StatusOK || !env.Success {
			t.Fatalf("first delete: status %d, envelope %+v", status, env)
		}

		status, env, _ = doJSON(t, http.MethodDelete, url, nil)
		if status != http.StatusNotFound {
			t.Errorf("expected 404 on second delete, got %d", status)
		}
		if env.Success {
			t.Error("expected failure envelope on second delete")
		}
	})
}

func TestGetUserByUsernameOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	created := createUser(t, ts, "alice", "secret-password")

	status, env, _ := doJSON(t, http.MethodGet, ts.URL+"/api/users/by_username/alice", nil)
	if status != http.StatusOK || !env.Success {
		t.Fatalf("lookup failed: status %d, envelope %+v", status, env)
	}

	var user models.UserResponse
	if err := json.Unmarshal(env.Data, &user); err != nil {
		t.Fatalf("decoding user: %v", err)
	}
	if user.UserID != created.UserID {
		t.Errorf("expected user %d, got %d", created.UserID, user.UserID)
	}

	status, env, _ = doJSON(t, http.MethodGet, ts.URL+"/api/users/by_username/nobody", nil)
	if status != http.StatusNotFound {
		t.Errorf("expected 404, got %d", status)
	}
	if env.Success {
		t.Error("expected failure envelope")
	}
}

func TestServerMemberFlowOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	owner := createUser(t, ts, "owner", "secret-password")
	guest := createUser(t, ts, "guest", "secret-password")

	status, env, _ := doJSON(t, http.MethodPost, ts.URL+"/api/servers", map[string]any{
		"name":          "general",
		"owner_user_id": owner.UserID,
	})
	if status != http.StatusCreated {
		t.Fatalf("creating server: %d %+v", status, env)
	}
	var server models.Server
	if err := json.Unmarshal(env.Data, &server); err != nil {
		t.Fatalf("decoding server: %v", err)
	}

	membersURL := fmt.Sprintf("%s/api/servers/%d/members", ts.URL, server.ServerID)

	status, env, _ = doJSON(t, http.MethodPost, membersURL, map[string]any{
		"user_id": guest.UserID,
	})
	if status != http.StatusCreated || !env.Success {
		t.Fatalf("adding member: status %d, envelope %+v", status, env)
	}

	t.Run("duplicate member rejected", func(t *testing.T) {
		status, env, _ := doJSON(t, http.MethodPost, membersURL, map[string]any{
			"user_id": guest.UserID,
		})
		if status != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", status)
		}
		if env.Error == nil || *env.Error != "Already a member" {
			t.Errorf("unexpected error message: %v", env.Error)
		}
	})

	memberURL := fmt.Sprintf("%s/%d", membersURL, guest.UserID)

	t.Run("nickname update", func(t *testing.T) {
		status, env, _ := doJSON(t, http.MethodPut, memberURL, map[string]any{
			"nickname": "newcomer",
		})
		if status != http.StatusOK || !env.Success {
			t.Fatalf("nickname update: status %d, envelope %+v", status, env)
		}

		var member models.ServerMember
		if err := json.Unmarshal(env.Data, &member); err != nil {
			t.Fatalf("decoding member: %v", err)
		}
		if member.Nickname == nil || *member.Nickname != "newcomer" {
			t.Errorf("nickname not applied: %v", member.Nickname)
		}
	})

	t.Run("remove member", func(t *testing.T) {
		status, env, _ := doJSON(t, http.MethodDelete, memberURL, nil)
		if status != http.StatusOK || !env.Success {
			t.Fatalf("removal: status %d, envelope %+v", status, env)
		}

		status, env, _ = doJSON(t, http.MethodDelete, memberURL, nil)
		if status != http.StatusNotFound {
			t.Errorf("expected 404 on second removal, got %d", status)
		}
		if env.Success {
			t.Error("expected failure envelope on second removal")
		}
	})
}

func TestDmWorkflowOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	alice := createUser(t, ts, "alice", "secret-password")
	bob := createUser(t, ts, "bob", "secret-password")

	status, env, _ := doJSON(t, http.MethodPost, ts.URL+"/api/dm", map[string]any{
		"user_a": alice.UserID,
		"user_b": bob.UserID,
	})
	if status != http.StatusOK || !env.Success {
		t.Fatalf("dm creation failed: status %d, envelope %+v", status, env)
	}

	var channel models.Channel
	if err := json.Unmarshal(env.Data, &channel); err != nil {
		t.Fatalf("decoding channel: %v", err)
	}
	if channel.ChannelType != models.ChannelTypeDM {
		t.Errorf("expected dm channel, got %q", channel.ChannelType)
	}

	// same pair resolves to the same channel
	status, env, _ = doJSON(t, http.MethodPost, ts.URL+"/api/dm", map[string]any{
		"user_a": bob.UserID,
		"user_b": alice.UserID,
	})
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}

	var again models.Channel
	if err := json.Unmarshal(env.Data, &again); err != nil {
		t.Fatalf("decoding channel: %v", err)
	}
	if again.ChannelID != channel.ChannelID {
		t.Errorf("expected channel %d, got %d", channel.ChannelID, again.ChannelID)
	}

	t.Run("self dm rejected", func(t *testing.T) {
		status, env, _ := doJSON(t, http.MethodPost, ts.URL+"/api/dm", map[string]any{
			"user_a": alice.UserID,
			"user_b": alice.UserID,
		})
		if status != http.StatusBadRequest || env.Success {
			t.Errorf("expected 400 failure, got %d %+v", status, env)
		}
	})

	t.Run("delete dm", func(t *testing.T) {
		status, env, _ := doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/dm/%d", ts.URL, channel.ChannelID), nil)
		if status != http.StatusOK || !env.Success {
			t.Fatalf("expected deletion, got %d %+v", status, env)
		}
	})
}

func TestMessageFlowOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	alice := createUser(t, ts, "alice", "secret-password")

	status, env, _ := doJSON(t, http.MethodPost, ts.URL+"/api/servers", map[string]any{
		"name":          "general",
		"owner_user_id": alice.UserID,
	})
	if status != http.StatusCreated {
		t.Fatalf("creating server: %d %+v", status, env)
	}
	var server models.Server
	if err := json.Unmarshal(env.Data, &server); err != nil {
		t.Fatalf("decoding server: %v", err)
	}

	status, env, _ = doJSON(t, http.MethodPost, ts.URL+"/api/channels", map[string]any{
		"server_id": server.ServerID,
		"name":      "chat",
	})
	if status != http.StatusCreated {
		t.Fatalf("creating channel: %d %+v", status, env)
	}
	var channel models.Channel
	if err := json.Unmarshal(env.Data, &channel); err != nil {
		t.Fatalf("decoding channel: %v", err)
	}

	for _, content := range []string{"first", "second", "third"} {
		status, env, _ = doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/channels/%d/messages", ts.URL, channel.ChannelID), map[string]any{
			"author_user_id": alice.UserID,
			"content":        content,
		})
		if status != http.StatusCreated {
			t.Fatalf("creating message %q: %d %+v", content, status, env)
		}
	}

	status, env, _ = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/channels/%d/messages?limit=2", ts.URL, channel.ChannelID), nil)
	if status != http.StatusOK {
		t.Fatalf("listing messages: %d %+v", status, env)
	}

	var bundle models.ChannelWithMessages
	if err := json.Unmarshal(env.Data, &bundle); err != nil {
		t.Fatalf("decoding bundle: %v", err)
	}
	if len(bundle.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(bundle.Messages))
	}
	if bundle.Messages[0].Content != "third" || bundle.Messages[1].Content != "second" {
		t.Errorf("unexpected order: %q, %q", bundle.Messages[0].Content, bundle.Messages[1].Content)
	}
	if bundle.Messages[0].Author.Username != "alice" {
		t.Errorf("expected author alice, got %q", bundle.Messages[0].Author.Username)
	}
}
