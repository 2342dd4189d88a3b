package apiclient_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maynagashev/autoassist/internal/apiclient"
	"github.com/maynagashev/autoassist/internal/models"
)

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func TestHTTPClient_ListCars(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/cars", r.URL.Path)
		assert.Equal(t, "Tata", r.URL.Query().Get("brand"))
		writeJSON(t, w, http.StatusOK, map[string]any{
			"success":    true,
			"data":       []map[string]any{{"id": 1, "brand": "Tata", "model": "Nexon", "year": 2022, "price": 800000}},
			"pagination": map[string]any{"page": 1, "limit": 10, "total": 1, "pages": 1},
		})
	}))
	defer server.Close()

	client := apiclient.NewHTTPClient(server.URL)
	cars, page, err := client.ListCars(t.Context(), url.Values{"brand": {"Tata"}})
	require.NoError(t, err)
	require.Len(t, cars, 1)
	assert.Equal(t, "Nexon", cars[0].Model)
	require.NotNil(t, page)
	assert.Equal(t, int64(1), page.Total)
}

func TestHTTPClient_LoginAndVerify(t *testing.T) {
	const token = "jwt-token"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			var req models.LoginRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			if req.Password != "Secret1" {
				writeJSON(t, w, http.StatusUnauthorized, map[string]any{"success": false, "error": "Invalid email or password"})
				return
			}
			writeJSON(t, w, http.StatusOK, map[string]any{
				"success": true,
				"data":    map[string]any{"token": token, "user": map[string]any{"id": 5, "email": req.Email}},
			})
		case "/api/auth/verify":
			assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))
			writeJSON(t, w, http.StatusOK, map[string]any{
				"success": true,
				"data":    map[string]any{"user": map[string]any{"id": 5, "username": "eve"}},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := apiclient.NewHTTPClient(server.URL)

	_, err := client.Verify(t.Context())
	require.ErrorIs(t, err, apiclient.ErrAuthorization)

	_, err = client.Login(t.Context(), "eve@example.com", "wrong")
	require.ErrorIs(t, err, apiclient.ErrAuthorization)
	assert.Contains(t, err.Error(), "Invalid email or password")

	res, err := client.Login(t.Context(), "eve@example.com", "Secret1")
	require.NoError(t, err)
	assert.Equal(t, token, res.Token)
	assert.Equal(t, int64(5), res.User.ID)

	user, err := client.Verify(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "eve", user.Username)
}

func TestHTTPClient_Health(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{name: "up", status: http.StatusOK},
		{name: "storage down", status: http.StatusServiceUnavailable, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/health", r.URL.Path)
				writeJSON(t, w, tt.status, map[string]any{"success": tt.status == http.StatusOK, "message": "AutoAssist Backend is running"})
			}))
			defer server.Close()

			env, err := apiclient.NewHTTPClient(server.URL).Health(t.Context())
			if tt.wantErr {
				var statusErr *apiclient.StatusError
				require.ErrorAs(t, err, &statusErr)
				assert.Equal(t, tt.status, statusErr.Status)
				return
			}
			require.NoError(t, err)
			assert.True(t, env.Success)
		})
	}
}

func TestHTTPClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	_, err := apiclient.NewHTTPClient(addr).Index(t.Context())
	require.Error(t, err)
}
