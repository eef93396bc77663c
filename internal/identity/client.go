package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client REST tabanlı kimlik sağlayıcı istemcisi (GoTrue uyumlu uçlar).
type Client struct {
	baseURL    string
	serviceKey string
	http       *http.Client
}

func NewClient(baseURL, serviceKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		http:       &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path, bearer string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.serviceKey)
	if bearer == "" {
		bearer = c.serviceKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("kimlik sağlayıcıya ulaşılamadı: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusBadRequest:
		return ErrInvalidCredentials
	case resp.StatusCode == http.StatusNotFound:
		return ErrUserNotFound
	case resp.StatusCode >= 400:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("kimlik sağlayıcı hatası (%d): %s", resp.StatusCode, msg)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	var sess Session
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/token?grant_type=password", "", body, &sess); err != nil {
		return nil, err
	}
	if sess.AccessToken == "" {
		return nil, ErrInvalidCredentials
	}
	return &sess, nil
}

func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, http.MethodPost, "/logout", accessToken, nil, nil)
}

func (c *Client) GetUser(ctx context.Context, accessToken string) (*ProviderUser, error) {
	var user ProviderUser
	if err := c.do(ctx, http.MethodGet, "/user", accessToken, nil, &user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (c *Client) AdminCreateUser(ctx context.Context, email, password string) (*ProviderUser, error) {
	var user ProviderUser
	body := map[string]any{"email": email, "password": password, "email_confirm": true}
	if err := c.do(ctx, http.MethodPost, "/admin/users", "", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) AdminUpdateEmail(ctx context.Context, userID, email string) error {
	body := map[string]string{"email": email}
	return c.do(ctx, http.MethodPut, "/admin/users/"+url.PathEscape(userID), "", body, nil)
}

func (c *Client) AdminUpdatePassword(ctx context.Context, userID, password string) error {
	body := map[string]string{"password": password}
	return c.do(ctx, http.MethodPut, "/admin/users/"+url.PathEscape(userID), "", body, nil)
}

func (c *Client) AdminDeleteUser(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodDelete, "/admin/users/"+url.PathEscape(userID), "", nil, nil)
}

func (c *Client) ListUsersByEmail(ctx context.Context, email string) ([]ProviderUser, error) {
	var out struct {
		Users []ProviderUser `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, "/admin/users?email="+url.QueryEscape(email), "", nil, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

var _ Provider = (*Client)(nil)
