package keycloak

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeKeycloak serves the token endpoint plus whatever admin handler the
// test installs.
func fakeKeycloak(t *testing.T, adminHandler http.HandlerFunc) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/realms/master/protocol/openid-connect/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "admin-cli", r.PostFormValue("client_id"))
		assert.Equal(t, "password", r.PostFormValue("grant_type"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"admin-token","expires_in":300}`))
	})
	if adminHandler != nil {
		mux.HandleFunc("/admin/realms/", adminHandler)
	}
	return httptest.NewServer(mux)
}

func newTestClient(t *testing.T, serverURL string) *AdminClient {
	return NewAdminClient(serverURL, "master", "admin", "admin", false, "", zaptest.NewLogger(t))
}

func TestTestAuthentication(t *testing.T) {
	server := fakeKeycloak(t, nil)
	defer server.Close()

	client := newTestClient(t, server.URL)

	assert.NoError(t, client.TestAuthentication(context.Background()))
}

func TestAdminTokenUnavailable(t *testing.T) {
	server := fakeKeycloak(t, nil)
	server.Close()

	client := newTestClient(t, server.URL)

	err := client.TestAuthentication(context.Background())
	assert.True(t, IsKind(err, KindIdPUnavailable))
}

func TestRetryOnUnauthorized(t *testing.T) {
	var attempts int32
	server := fakeKeycloak(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})
	defer server.Close()

	client := newTestClient(t, server.URL)

	users, err := client.ListUsers(context.Background(), "sgu")

	require.NoError(t, err)
	assert.Empty(t, users)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts), "request is retried once after a 401")
}

func TestConcurrentRequestsShareTokenCacheSafely(t *testing.T) {
	var tokenFetches int32
	mux := http.NewServeMux()
	mux.HandleFunc("/realms/master/protocol/openid-connect/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&tokenFetches, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"admin-token","expires_in":300}`))
	})
	mux.HandleFunc("/admin/realms/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL)
	client.accessToken = "stale-token"
	client.tokenExpiry = time.Now().Add(-time.Minute)

	var wg sync.WaitGroup
	errs := make([]error, 16)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = client.ListUsers(context.Background(), "sgu")
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "goroutine %d", i)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&tokenFetches),
		"an expired token is refreshed once, not once per caller")
}

func TestCreateUserConflict(t *testing.T) {
	server := fakeKeycloak(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		w.WriteHeader(http.StatusConflict)
	})
	defer server.Close()

	client := newTestClient(t, server.URL)

	err := client.CreateUser(context.Background(), "sgu", &UserRepresentation{Username: "alice@example.com"})
	assert.True(t, IsKind(err, KindDuplicateIdentifier))
}

func TestCreateUserServerError(t *testing.T) {
	server := fakeKeycloak(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer server.Close()

	client := newTestClient(t, server.URL)

	err := client.CreateUser(context.Background(), "sgu", &UserRepresentation{Username: "alice@example.com"})
	assert.True(t, IsKind(err, KindProvisioningFailed))
}

func TestFindUserByUsername(t *testing.T) {
	server := fakeKeycloak(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "alice@example.com", r.URL.Query().Get("username"))
		assert.Equal(t, "true", r.URL.Query().Get("exact"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]UserRepresentation{
			{ID: "user-1", Username: "alice@example.com", EmailVerified: true},
		})
	})
	defer server.Close()

	client := newTestClient(t, server.URL)

	user, err := client.FindUserByUsername(context.Background(), "sgu", "alice@example.com")

	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
}

func TestFindUserByUsernameNotFound(t *testing.T) {
	server := fakeKeycloak(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.FindUserByUsername(context.Background(), "sgu", "ghost@example.com")
	assert.True(t, IsKind(err, KindUserNotFound))
}

func TestFindUserByEmailFiltersExactMatch(t *testing.T) {
	server := fakeKeycloak(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]UserRepresentation{
			{ID: "user-2", Email: "alice.smith@example.com"},
			{ID: "user-1", Email: "Alice@example.com"},
		})
	})
	defer server.Close()

	client := newTestClient(t, server.URL)

	user, err := client.FindUserByEmail(context.Background(), "sgu", "alice@example.com")

	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID, "case-insensitive exact match wins over prefix matches")
}

func TestGetRealmRoleNotFound(t *testing.T) {
	server := fakeKeycloak(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.GetRealmRole(context.Background(), "sgu", "ghost")
	assert.True(t, IsKind(err, KindRoleNotFound))
}

func TestGetClientByClientIDNotFound(t *testing.T) {
	server := fakeKeycloak(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.GetClientByClientID(context.Background(), "sgu", "ghost")
	assert.True(t, IsKind(err, KindClientNotFound))
}

func TestExecuteActionsEmail(t *testing.T) {
	server := fakeKeycloak(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PUT", r.Method)
		assert.Equal(t, "/admin/realms/sgu/users/user-1/execute-actions-email", r.URL.Path)

		var actions []string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&actions))
		assert.Equal(t, []string{"VERIFY_EMAIL"}, actions)

		w.WriteHeader(http.StatusNoContent)
	})
	defer server.Close()

	client := newTestClient(t, server.URL)

	err := client.ExecuteActionsEmail(context.Background(), "sgu", "user-1", []string{"VERIFY_EMAIL"})
	assert.NoError(t, err)
}

func TestDeleteUserNotFound(t *testing.T) {
	server := fakeKeycloak(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer server.Close()

	client := newTestClient(t, server.URL)

	err := client.DeleteUser(context.Background(), "sgu", "ghost")
	assert.True(t, IsKind(err, KindUserNotFound))
}
