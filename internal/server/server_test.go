package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osirenko/finch/internal/client"
	"github.com/osirenko/finch/internal/model"
	"github.com/osirenko/finch/internal/state"
	"github.com/osirenko/finch/internal/storage"
)

func newTestServer(t *testing.T) (*httptest.Server, *storage.SQLiteStorage) {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))

	_, err = store.CreateUser(context.Background(), "oles", "hunter2", "Oles")
	require.NoError(t, err)

	srv := httptest.NewServer(New(store).Handler())
	t.Cleanup(srv.Close)
	return srv, store
}

func login(t *testing.T, srv *httptest.Server, username, password string) string {
	t.Helper()

	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	require.NoError(t, err)
	resp, err := http.Post(srv.URL+"/api/login", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	require.NotEmpty(t, result.Token)
	return result.Token
}

func request(t *testing.T, srv *httptest.Server, method, path, token string, payload any) *http.Response {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(encoded)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, srv.URL+path, body)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestLogin_BadCredentials(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "wrong password", username: "oles", password: "wrong"},
		{name: "unknown user", username: "nobody", password: "hunter2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(map[string]string{"username": tt.username, "password": tt.password})
			resp, err := http.Post(srv.URL+"/api/login", "application/json", bytes.NewReader(body))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestAuth_UniformUnauthorized(t *testing.T) {
	srv, _ := newTestServer(t)

	endpoints := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/transactions"},
		{http.MethodPost, "/api/transactions/add"},
		{http.MethodPost, "/api/transaction/update"},
		{http.MethodPost, "/api/transaction/delete"},
		{http.MethodPost, "/api/transactions/category"},
		{http.MethodPost, "/api/transactions/tags"},
		{http.MethodPost, "/api/logout"},
		{http.MethodGet, "/api/categories"},
	}

	for _, e := range endpoints {
		t.Run(e.path, func(t *testing.T) {
			resp := request(t, srv, e.method, e.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "missing token")

			resp = request(t, srv, e.method, e.path, "bogus-token", nil)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "invalid token")
		})
	}
}

func TestTransactions_CRUDRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)
	token := login(t, srv, "oles", "hunter2")

	add := []model.NewTransaction{
		{Amount: -12.5, Currency: "CAD", OccurredAt: "2024-01-15T12:00", Merchant: "Save-On",
			Category: "food", Tags: []string{"lunch"}},
	}
	resp := request(t, srv, http.MethodPost, "/api/transactions/add", token, add)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = request(t, srv, http.MethodGet, "/api/transactions", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed []model.Transaction
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "Save-On", listed[0].Merchant)
	assert.Equal(t, "Oles", listed[0].PersonName)
	assert.Equal(t, []string{"lunch"}, listed[0].Tags)

	updated := listed[0]
	updated.Category = "groceries"
	updated.Tags = []string{"lunch", "weekly"}
	resp = request(t, srv, http.MethodPost, "/api/transaction/update", token, updated)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = request(t, srv, http.MethodGet, "/api/categories", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var categories []string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&categories))
	assert.Equal(t, []string{"groceries"}, categories)

	resp = request(t, srv, http.MethodPost, "/api/transaction/delete", token,
		map[string]int64{"id": listed[0].ID})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = request(t, srv, http.MethodPost, "/api/transaction/delete", token,
		map[string]int64{"id": listed[0].ID})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "deleting twice reports not found")
}

func TestTransactions_BatchCategoryAndTags(t *testing.T) {
	srv, _ := newTestServer(t)
	token := login(t, srv, "oles", "hunter2")

	var add []model.NewTransaction
	for i := 1; i <= 3; i++ {
		add = append(add, model.NewTransaction{
			Amount:     float64(-i * 10),
			OccurredAt: fmt.Sprintf("2024-01-%02dT12:00", i),
			Merchant:   fmt.Sprintf("Shop %d", i),
		})
	}
	resp := request(t, srv, http.MethodPost, "/api/transactions/add", token, add)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = request(t, srv, http.MethodGet, "/api/transactions", token, nil)
	var listed []model.Transaction
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	require.Len(t, listed, 3)
	ids := []int64{listed[0].ID, listed[1].ID}

	resp = request(t, srv, http.MethodPost, "/api/transactions/category", token,
		map[string]any{"transaction_ids": ids, "category": "travel"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = request(t, srv, http.MethodPost, "/api/transactions/tags", token,
		map[string]any{"transaction_ids": ids, "tag": "trip", "action": "add"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = request(t, srv, http.MethodGet, "/api/transactions", token, nil)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	assert.Equal(t, "travel", listed[0].Category)
	assert.Equal(t, []string{"trip"}, listed[0].Tags)
	assert.Empty(t, listed[2].Tags)
}

func TestManageTags_InvalidPayload(t *testing.T) {
	srv, _ := newTestServer(t)
	token := login(t, srv, "oles", "hunter2")

	resp := request(t, srv, http.MethodPost, "/api/transactions/tags", token,
		map[string]any{"transaction_ids": []int64{1}, "tag": "x", "action": "rename"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogout_InvalidatesSession(t *testing.T) {
	srv, _ := newTestServer(t)
	token := login(t, srv, "oles", "hunter2")

	resp := request(t, srv, http.MethodPost, "/api/logout", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = request(t, srv, http.MethodGet, "/api/transactions", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// The API client and the server are developed against the same contract;
// run the client against the real stack once to keep them honest.
func TestEndToEnd_ClientAgainstServer(t *testing.T) {
	srv, _ := newTestServer(t)

	s := state.New(nil, time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC),
		func(_ time.Duration, _ func()) {})
	defer s.Close()
	c := client.New(srv.URL, s)
	ctx := context.Background()

	require.NoError(t, c.Login(ctx, "oles", "hunter2"))
	require.True(t, s.LoggedIn())

	require.NoError(t, c.Add(ctx, []model.NewTransaction{
		{Amount: -42, OccurredAt: "2024-03-01T10:00", Merchant: "Save-On", Category: "food"},
	}))
	transactions := s.Transactions.Get()
	require.Len(t, transactions, 1, "add refetches the store")
	assert.Equal(t, "Save-On", transactions[0].Merchant)

	require.NoError(t, c.Delete(ctx, transactions[0].ID))
	assert.Empty(t, s.Transactions.Get())

	require.NoError(t, c.Logout(ctx))
	assert.False(t, s.LoggedIn())
}
