// Package client is the Transaction Store's network side: a thin REST
// client whose operations keep the in-memory transaction list, the shared
// error cell, and the loading flag in the state graph up to date.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/osirenko/finch/internal/common"
	"github.com/osirenko/finch/internal/model"
	"github.com/osirenko/finch/internal/state"
)

// Client talks to the finch API. Every operation that sees a 401 clears
// the credential cell, cascading into the logged-out state; that policy
// lives in one place (checkStatus), never at call sites.
type Client struct {
	baseURL    string
	httpClient *http.Client
	state      *state.AppState
}

// New creates an API client bound to the given state graph.
func New(baseURL string, s *state.AppState) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		state: s,
	}
}

// FetchAll replaces the store wholesale with the server's transaction
// list. With no credential it clears the store and returns. A 401 clears
// the credential without surfacing an error. The loading flag is cleared
// on every path.
func (c *Client) FetchAll(ctx context.Context) error {
	s := c.state
	if !s.LoggedIn() {
		s.Transactions.Set(nil)
		return nil
	}

	s.Loading.Set(true)
	s.Err.Set("")
	defer s.Loading.Set(false)

	resp, err := c.do(ctx, http.MethodGet, "/api/transactions", nil)
	if err != nil {
		return c.fail(err, "Failed to fetch transactions")
	}
	defer func() { _ = resp.Body.Close() }()

	if err := c.checkStatus(resp); err != nil {
		if err == common.ErrUnauthorized {
			return nil
		}
		return c.fail(err, "Failed to fetch transactions")
	}

	var transactions []model.Transaction
	if err := json.NewDecoder(resp.Body).Decode(&transactions); err != nil {
		return c.fail(err, "Failed to fetch transactions")
	}

	s.Transactions.Set(transactions)
	return nil
}

// Add posts a batch of new transactions and refreshes the store on
// success. The backend assigns the IDs.
func (c *Client) Add(ctx context.Context, newTransactions []model.NewTransaction) error {
	s := c.state
	if !s.LoggedIn() {
		s.Err.Set("Not logged in")
		return common.ErrUnauthorized
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/transactions/add", newTransactions)
	if err != nil {
		return c.fail(err, "Failed to add transactions")
	}
	defer func() { _ = resp.Body.Close() }()

	if err := c.checkStatus(resp); err != nil {
		if err == common.ErrUnauthorized {
			s.Err.Set("Session expired. Please log in again.")
			return err
		}
		return c.fail(err, "Failed to add transactions")
	}

	return c.FetchAll(ctx)
}

// Update posts a full record and patches it into the store in place. The
// local patch, unlike the batch operations' refetch, cannot clobber other
// in-flight local edits.
func (c *Client) Update(ctx context.Context, tr model.Transaction) error {
	resp, err := c.do(ctx, http.MethodPost, "/api/transaction/update", tr)
	if err != nil {
		return c.fail(err, "Failed to save transaction")
	}
	defer func() { _ = resp.Body.Close() }()

	if err := c.checkStatus(resp); err != nil {
		if err == common.ErrUnauthorized {
			return err
		}
		return c.fail(err, "Failed to save transaction")
	}

	c.state.Transactions.Update(func(transactions []model.Transaction) []model.Transaction {
		patched := make([]model.Transaction, len(transactions))
		copy(patched, transactions)
		for i := range patched {
			if patched[i].ID == tr.ID {
				patched[i] = tr
				break
			}
		}
		return patched
	})
	return nil
}

// Delete removes a transaction by ID, server first, then locally.
func (c *Client) Delete(ctx context.Context, id int64) error {
	payload := struct {
		ID int64 `json:"id"`
	}{ID: id}

	resp, err := c.do(ctx, http.MethodPost, "/api/transaction/delete", payload)
	if err != nil {
		return c.fail(err, "Failed to delete transaction")
	}
	defer func() { _ = resp.Body.Close() }()

	if err := c.checkStatus(resp); err != nil {
		if err == common.ErrUnauthorized {
			return err
		}
		return c.fail(err, "Failed to delete transaction")
	}

	c.state.Transactions.Update(func(transactions []model.Transaction) []model.Transaction {
		remaining := make([]model.Transaction, 0, len(transactions))
		for _, tr := range transactions {
			if tr.ID != id {
				remaining = append(remaining, tr)
			}
		}
		return remaining
	})
	return nil
}

// SetCategory changes the category on a batch of transactions and
// refetches; batch mutations prefer a consistent refetch over local
// patching.
func (c *Client) SetCategory(ctx context.Context, ids []int64, category string) error {
	payload := struct {
		TransactionIDs []int64 `json:"transaction_ids"`
		Category       string  `json:"category"`
	}{TransactionIDs: ids, Category: category}

	resp, err := c.do(ctx, http.MethodPost, "/api/transactions/category", payload)
	if err != nil {
		return c.fail(err, "Failed to update category")
	}
	defer func() { _ = resp.Body.Close() }()

	if err := c.checkStatus(resp); err != nil {
		if err == common.ErrUnauthorized {
			return err
		}
		return c.fail(err, "Failed to update category")
	}

	return c.FetchAll(ctx)
}

// TagAction selects what ManageTag does with the tag.
type TagAction string

// Tag actions accepted by the API.
const (
	TagAdd    TagAction = "add"
	TagRemove TagAction = "remove"
)

// ManageTag adds or removes one tag on a batch of transactions and
// refetches.
func (c *Client) ManageTag(ctx context.Context, ids []int64, tag string, action TagAction) error {
	payload := struct {
		TransactionIDs []int64 `json:"transaction_ids"`
		Tag            string  `json:"tag"`
		Action         string  `json:"action"`
	}{TransactionIDs: ids, Tag: tag, Action: string(action)}

	resp, err := c.do(ctx, http.MethodPost, "/api/transactions/tags", payload)
	if err != nil {
		return c.fail(err, "Failed to update tags")
	}
	defer func() { _ = resp.Body.Close() }()

	if err := c.checkStatus(resp); err != nil {
		if err == common.ErrUnauthorized {
			return err
		}
		return c.fail(err, "Failed to update tags")
	}

	return c.FetchAll(ctx)
}

// Login exchanges credentials for a session token and stores it.
func (c *Client) Login(ctx context.Context, username, password string) error {
	payload := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{Username: username, Password: password}

	resp, err := c.do(ctx, http.MethodPost, "/api/login", payload)
	if err != nil {
		return c.fail(err, "Login failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.fail(fmt.Errorf("%s", readBody(resp)), "Login failed")
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return c.fail(err, "Login failed")
	}

	c.state.Err.Set("")
	c.state.Token.Set(result.Token)
	return nil
}

// Logout invalidates the session server-side; the local credential is
// cleared even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	if !c.state.LoggedIn() {
		return nil
	}
	defer c.state.Token.Set("")

	resp, err := c.do(ctx, http.MethodPost, "/api/logout", nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("logout failed: %s", readBody(resp))
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.state.Token.Get(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.httpClient.Do(req)
}

// checkStatus enforces the cross-cutting auth policy: any 401 clears the
// stored credential. Other non-2xx statuses become errors carrying the
// response body text.
func (c *Client) checkStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusUnauthorized {
		c.state.Token.Set("")
		return common.ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s", readBody(resp))
	}
	return nil
}

// fail records the operation outcome in the shared error cell and returns
// a wrapped error for CLI callers.
func (c *Client) fail(err error, userMessage string) error {
	wrapped := common.NewUserError(userMessage, err)
	c.state.Err.Set(wrapped.Error())
	return wrapped
}

func readBody(resp *http.Response) string {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.Status
	}
	text := string(bytes.TrimSpace(body))
	if text == "" {
		return resp.Status
	}
	return text
}
