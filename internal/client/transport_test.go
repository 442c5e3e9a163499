package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/aawaaz/complaint-desk/internal/apperrors"
)

func TestUnwrapEnvelope(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"raw array", `[1,2]`, `[1,2]`},
		{"data only", `{"data":[1,2]}`, `[1,2]`},
		{"full envelope", `{"code":200,"msg":"ok","message":"ok","data":{"a":1}}`, `{"a":1}`},
		{"zero code", `{"code":0,"data":"x"}`, `"x"`},
		{"string ok code", `{"code":"ok","data":1}`, `1`},
		{"page is not an envelope", `{"list":[],"total":0}`, `{"list":[],"total":0}`},
		{"extra key keeps raw", `{"data":1,"total":3}`, `{"data":1,"total":3}`},
		{"success without data", `{"code":0,"msg":"ok"}`, `{"code":0,"msg":"ok"}`},
		{"not json", `hello`, `hello`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UnwrapEnvelope(http.StatusOK, []byte(tt.in))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestUnwrapEnvelopeFailureCodes(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		check func(t *testing.T, err error)
	}{
		{"numeric failure", `{"code":500,"message":"db down","data":null}`, func(t *testing.T, err error) {
			var te *apperrors.TransportError
			if !errors.As(err, &te) || te.StatusCode != http.StatusOK || !strings.Contains(te.Error(), "db down") {
				t.Fatalf("expected TransportError carrying the message, got %v", err)
			}
		}},
		{"failure without data", `{"code":401,"msg":"token expired"}`, func(t *testing.T, err error) {
			if !apperrors.IsTransport(err) {
				t.Fatalf("expected TransportError, got %v", err)
			}
		}},
		{"string failure", `{"code":"error","message":"boom","data":null}`, func(t *testing.T, err error) {
			if !apperrors.IsTransport(err) {
				t.Fatalf("expected TransportError, got %v", err)
			}
		}},
		{"kind code", `{"code":"validation_error","message":"title is required","data":null}`, func(t *testing.T, err error) {
			if !apperrors.IsValidation(err) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UnwrapEnvelope(http.StatusOK, []byte(tt.in))
			if got != nil {
				t.Fatalf("expected no payload, got %s", got)
			}
			tt.check(t, err)
		})
	}
}

func TestHTTPTransportRejectsFailedEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":500,"message":"db down","data":null}`))
	}))
	defer srv.Close()

	c := New(NewHTTPTransport(srv.URL))
	got, err := c.Complaints.Get(context.Background(), "x")
	if !apperrors.IsTransport(err) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if got.ID != "" {
		t.Fatalf("expected zero complaint, got %+v", got)
	}
	if err := c.Complaints.Delete(context.Background(), "x"); !apperrors.IsTransport(err) {
		t.Fatalf("expected TransportError without an out value, got %v", err)
	}
}

func TestHTTPTransportEncodesRequests(t *testing.T) {
	var (
		gotQuery url.Values
		gotBody  map[string]interface{}
		gotAuth  string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotAuth = r.Header.Get("Authorization")
		gotBody = nil
		if r.Method == http.MethodPost {
			json.NewDecoder(r.Body).Decode(&gotBody)
		}
		w.Write([]byte(`{"data":{"ok":true}}`))
	}))
	defer srv.Close()

	tr := NewHTTPTransport(srv.URL+"/", WithToken("tok"))
	var out struct{ OK bool }

	err := tr.Do(context.Background(), http.MethodGet, "/x", map[string]interface{}{
		"ids":  []string{"a", "b"},
		"page": 2,
	}, &out)
	if err != nil || !out.OK {
		t.Fatalf("unexpected result %+v (%v)", out, err)
	}
	if len(gotQuery["ids"]) != 2 || gotQuery.Get("page") != "2" {
		t.Fatalf("unexpected query %v", gotQuery)
	}
	if gotAuth != "Bearer tok" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}

	if err := tr.Do(context.Background(), http.MethodPost, "/x", map[string]string{"title": "Noise"}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotBody["title"] != "Noise" || len(gotQuery) != 0 {
		t.Fatalf("expected JSON body only, got body %v query %v", gotBody, gotQuery)
	}

	if err := tr.Do(context.Background(), http.MethodGet, "/x", 42, nil); err == nil {
		t.Fatal("expected unsupported params error")
	}
}

func TestHTTPTransportDecodesErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{"validation", 400, `{"error":"is required","code":"validation_error","field":"title"}`, func(t *testing.T, err error) {
			var ve *apperrors.ValidationError
			if !errors.As(err, &ve) || ve.Field != "title" {
				t.Fatalf("expected ValidationError on title, got %v", err)
			}
		}},
		{"not found", 404, `{"error":"complaint x not found","code":"not_found","resource":"complaint","id":"x"}`, func(t *testing.T, err error) {
			var nf *apperrors.NotFoundError
			if !errors.As(err, &nf) || nf.ID != "x" {
				t.Fatalf("expected NotFoundError for x, got %v", err)
			}
		}},
		{"invalid transition", 409, `{"error":"nope","code":"invalid_transition","from":"completed","to":"pending"}`, func(t *testing.T, err error) {
			var it *apperrors.InvalidTransitionError
			if !errors.As(err, &it) || it.From != "completed" {
				t.Fatalf("expected InvalidTransitionError, got %v", err)
			}
		}},
		{"rate limited", 429, `{"error":"Rate limit exceeded","code":"rate_limited"}`, func(t *testing.T, err error) {
			var te *apperrors.TransportError
			if !errors.As(err, &te) || te.StatusCode != 429 {
				t.Fatalf("expected TransportError 429, got %v", err)
			}
		}},
		{"html gateway page", 502, `<html>bad gateway</html>`, func(t *testing.T, err error) {
			var te *apperrors.TransportError
			if !errors.As(err, &te) || te.StatusCode != 502 {
				t.Fatalf("expected TransportError 502, got %v", err)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			tt.check(t, NewHTTPTransport(srv.URL).Do(context.Background(), http.MethodGet, "/", nil, nil))
		})
	}
}

func TestHTTPTransportNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	err := NewHTTPTransport(base).Do(context.Background(), http.MethodGet, "/", nil, nil)
	var te *apperrors.TransportError
	if !errors.As(err, &te) || te.StatusCode != 0 || te.Unwrap() == nil {
		t.Fatalf("expected TransportError wrapping the dial failure, got %v", err)
	}
}
