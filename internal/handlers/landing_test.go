package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLanding(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	Landing(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected text/html content type, got %s", ct)
	}

	body := w.Body.String()
	for _, want := range []string{
		"<title>AWS CI/CD Docker Pipeline Demo</title>",
		"<h1>Hello from aws-cicd-docker-pipeline!</h1>",
		"<p>This web app is built with",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("landing page missing %q", want)
		}
	}
}

func TestLanding_Idempotent(t *testing.T) {
	var first []byte
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		// Query strings and headers are not consulted.
		req := httptest.NewRequest(http.MethodGet, "/?attempt="+strings.Repeat("x", i), nil)
		req.Header.Set("Accept", "application/json")
		Landing(w, req)

		if i == 0 {
			first = w.Body.Bytes()
			continue
		}
		if !bytes.Equal(first, w.Body.Bytes()) {
			t.Fatalf("response %d differs from the first one", i)
		}
	}
	if !bytes.Equal(first, LandingPage()) {
		t.Error("served body should equal the embedded page")
	}
}
