package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientAdminUpdateEmail(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Error(err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "service-key")
	if err := client.AdminUpdateEmail(context.Background(), "prov-1", "yeni@example.com"); err != nil {
		t.Fatal(err)
	}

	if gotMethod != http.MethodPut || gotPath != "/admin/users/prov-1" {
		t.Fatalf("request = %s %s", gotMethod, gotPath)
	}
	if gotBody["email"] != "yeni@example.com" {
		t.Fatalf("body = %v", gotBody)
	}
}

func TestClientListUsersByEmail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/users" || r.URL.Query().Get("email") != "ali@example.com" {
			t.Errorf("request = %s %s", r.Method, r.URL.String())
		}
		json.NewEncoder(w).Encode(map[string]any{
			"users": []ProviderUser{{ID: "prov-1", Email: "ali@example.com"}},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "service-key")
	users, err := client.ListUsersByEmail(context.Background(), "ali@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 || users[0].ID != "prov-1" {
		t.Fatalf("users = %+v", users)
	}
}

func TestClientSignInRejectedMapsToInvalidCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "service-key")
	if _, err := client.SignIn(context.Background(), "ali@example.com", "x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v", err)
	}
}

func TestClientUsesAccessTokenAsBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-ali" {
			t.Errorf("authorization = %q", r.Header.Get("Authorization"))
		}
		if r.Header.Get("apikey") != "service-key" {
			t.Errorf("apikey = %q", r.Header.Get("apikey"))
		}
		json.NewEncoder(w).Encode(ProviderUser{ID: "prov-1", Email: "ali@example.com"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "service-key")
	user, err := client.GetUser(context.Background(), "tok-ali")
	if err != nil {
		t.Fatal(err)
	}
	if user.ID != "prov-1" {
		t.Fatalf("user = %+v", user)
	}
}
