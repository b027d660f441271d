package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestDoJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"Bad credentials"}`))
			return
		}
		if r.Header.Get("X-Extra") != "yes" {
			t.Errorf("missing extra header")
		}
		w.Write([]byte(`{"name":"ok"}`))
	}))
	defer server.Close()

	c, err := New("github", server.URL+"/", WithHTTPClient(server.Client()), WithBearerToken("tok"), WithHeader("X-Extra", "yes"))
	if err != nil {
		t.Fatal(err)
	}
	var dst struct{ Name string }
	if err := c.DoJSON(context.Background(), http.MethodGet, c.URL("/thing", nil), "get thing", nil, &dst); err != nil {
		t.Fatalf("DoJSON: %v", err)
	}
	if dst.Name != "ok" {
		t.Errorf("name = %q", dst.Name)
	}

	anon, _ := New("github", server.URL, WithHTTPClient(server.Client()), WithHeader("X-Extra", "yes"))
	err = anon.DoJSON(context.Background(), http.MethodGet, anon.URL("thing", nil), "get thing", nil, nil)
	if !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Error("status errors should match ErrUnavailable")
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Message != "Bad credentials" || apiErr.Service != "github" {
		t.Errorf("unexpected error: %#v", err)
	}
}

func TestDoJSONSendsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "qa@example.com" || pass != "key" {
			t.Errorf("basic auth = %q %q %v", user, pass, ok)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		w.Write([]byte(`{"id": 7}`))
	}))
	defer server.Close()

	c, _ := New("testrail", server.URL, WithHTTPClient(server.Client()), WithBasicAuth("qa@example.com", "key"))
	var out struct{ ID int }
	if err := c.DoJSON(context.Background(), http.MethodPost, c.URL("add", nil), "add", map[string]string{"name": "x"}, &out); err != nil {
		t.Fatal(err)
	}
	if out.ID != 7 {
		t.Errorf("id = %d", out.ID)
	}
}

func TestErrorPredicates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"errorMessages":["Issue does not exist"]}`))
		case "/forbidden":
			w.WriteHeader(http.StatusForbidden)
		default:
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("boom"))
		}
	}))
	defer server.Close()

	c, _ := New("jira", server.URL, WithHTTPClient(server.Client()))
	ctx := context.Background()

	err := c.DoJSON(ctx, http.MethodGet, c.URL("missing", nil), "get issue", nil, nil)
	if !IsNotFound(err) || IsUnauthorized(err) {
		t.Errorf("missing: %v", err)
	}
	if got := err.Error(); got != "jira: get issue: status 404: Issue does not exist" {
		t.Errorf("message = %q", got)
	}
	if err := c.DoJSON(ctx, http.MethodGet, c.URL("forbidden", nil), "op", nil, nil); !IsUnauthorized(err) {
		t.Errorf("forbidden: %v", err)
	}
	err = c.DoJSON(ctx, http.MethodGet, c.URL("other", nil), "op", nil, nil)
	if !HasStatusCode(err, http.StatusInternalServerError) || IsNotFound(err) {
		t.Errorf("other: %v", err)
	}
}

func TestTransportErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c, _ := New("scm", server.URL)
	server.Close()

	err := c.DoJSON(context.Background(), http.MethodGet, c.URL("x", nil), "op", nil, nil)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
	if IsNotFound(err) {
		t.Error("transport error reported as not found")
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New("x", ""); err == nil {
		t.Error("expected error for empty base URL")
	}
	if _, err := New("x", "http://h", WithTimeout(-1)); err == nil {
		t.Error("expected error for negative timeout")
	}
}

func TestURL(t *testing.T) {
	c, _ := New("x", "https://h.example/api/")
	got := c.URL("/v2/get_cases/1", url.Values{"suite_id": {"3"}})
	if got != "https://h.example/api/v2/get_cases/1?suite_id=3" {
		t.Errorf("URL = %q", got)
	}
}

func TestWithTimeoutLeavesSharedClientAlone(t *testing.T) {
	shared := &http.Client{}
	c, err := New("svc", "https://example.test", WithHTTPClient(shared), WithTimeout(5*time.Second))
	if err != nil {
		t.Fatal(err)
	}
	if shared.Timeout != 0 {
		t.Errorf("shared client timeout changed to %v", shared.Timeout)
	}
	if c.httpClient == shared || c.httpClient.Timeout != 5*time.Second {
		t.Errorf("client timeout = %v, want 5s on a copy", c.httpClient.Timeout)
	}
}
