package browser_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"meetbot/internal/browser"
)

const elementKey = "element-6066-11e4-a52e-4f735466cecf"

func newTestClient(t *testing.T, handler http.Handler) (*browser.Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := browser.NewClient(server.URL, 5*time.Second, browser.WithPollInterval(time.Millisecond))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return client, server
}

func writeValue(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"value": value})
}

func sessionHandler(t *testing.T, mux *http.ServeMux) {
	t.Helper()
	mux.HandleFunc("POST /session", func(w http.ResponseWriter, r *http.Request) {
		writeValue(w, http.StatusOK, map[string]string{"sessionId": "sess-1"})
	})
}

func TestStartSessionStoresSessionID(t *testing.T) {
	mux := http.NewServeMux()
	sessionHandler(t, mux)
	client, _ := newTestClient(t, mux)

	if err := client.StartSession(context.Background(), browser.SessionOptions{Headless: true}); err != nil {
		t.Fatalf("StartSession returned error: %v", err)
	}
	if client.SessionID() != "sess-1" {
		t.Fatalf("session id = %q, want sess-1", client.SessionID())
	}
}

func TestFindAndClickClicksMatchedElement(t *testing.T) {
	clicked := false
	mux := http.NewServeMux()
	sessionHandler(t, mux)
	mux.HandleFunc("POST /session/sess-1/element", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Using string `json:"using"`
			Value string `json:"value"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Using != "xpath" || !strings.Contains(body.Value, "Join") {
			writeValue(w, http.StatusNotFound, map[string]string{"error": "no such element"})
			return
		}
		writeValue(w, http.StatusOK, map[string]string{elementKey: "el-9"})
	})
	mux.HandleFunc("POST /session/sess-1/element/el-9/click", func(w http.ResponseWriter, r *http.Request) {
		clicked = true
		writeValue(w, http.StatusOK, nil)
	})

	client, _ := newTestClient(t, mux)
	ctx := context.Background()
	if err := client.StartSession(ctx, browser.SessionOptions{}); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	sel := browser.XPath(`//button[contains(text(), "Join")]`)
	if err := client.FindAndClick(ctx, sel, 50*time.Millisecond); err != nil {
		t.Fatalf("FindAndClick returned error: %v", err)
	}
	if !clicked {
		t.Fatal("click endpoint was never called")
	}
}

func TestWaitForAnyReportsNotFoundOnTimeout(t *testing.T) {
	mux := http.NewServeMux()
	sessionHandler(t, mux)
	mux.HandleFunc("POST /session/sess-1/element", func(w http.ResponseWriter, r *http.Request) {
		writeValue(w, http.StatusNotFound, map[string]string{"error": "no such element"})
	})

	client, _ := newTestClient(t, mux)
	ctx := context.Background()
	if err := client.StartSession(ctx, browser.SessionOptions{}); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	_, err := client.WaitForAny(ctx, []browser.Selector{browser.XPath("//div")}, 20*time.Millisecond)
	if !errors.Is(err, browser.ErrNotFound) {
		t.Fatalf("WaitForAny error = %v, want ErrNotFound", err)
	}
}

func TestWaitForAnyReturnsMatchedIndex(t *testing.T) {
	mux := http.NewServeMux()
	sessionHandler(t, mux)
	mux.HandleFunc("POST /session/sess-1/element", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Value string `json:"value"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if strings.Contains(body.Value, "second") {
			writeValue(w, http.StatusOK, map[string]string{elementKey: "el-2"})
			return
		}
		writeValue(w, http.StatusNotFound, map[string]string{"error": "no such element"})
	})

	client, _ := newTestClient(t, mux)
	ctx := context.Background()
	if err := client.StartSession(ctx, browser.SessionOptions{}); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	sels := []browser.Selector{browser.XPath("//div[@id='first']"), browser.XPath("//div[@id='second']")}
	idx, err := client.WaitForAny(ctx, sels, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("WaitForAny returned error: %v", err)
	}
	if idx != 1 {
		t.Fatalf("matched index = %d, want 1", idx)
	}
}

func TestInvalidSessionIsFatal(t *testing.T) {
	mux := http.NewServeMux()
	sessionHandler(t, mux)
	mux.HandleFunc("POST /session/sess-1/element", func(w http.ResponseWriter, r *http.Request) {
		writeValue(w, http.StatusNotFound, map[string]string{"error": "invalid session id"})
	})

	client, _ := newTestClient(t, mux)
	ctx := context.Background()
	if err := client.StartSession(ctx, browser.SessionOptions{}); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	_, err := client.WaitForAny(ctx, []browser.Selector{browser.XPath("//div")}, 20*time.Millisecond)
	if !errors.Is(err, browser.ErrSessionLost) {
		t.Fatalf("error = %v, want ErrSessionLost", err)
	}
}

func TestTransportFailureIsSessionLost(t *testing.T) {
	mux := http.NewServeMux()
	sessionHandler(t, mux)
	client, server := newTestClient(t, mux)
	ctx := context.Background()
	if err := client.StartSession(ctx, browser.SessionOptions{}); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	server.Close()
	if err := client.Navigate(ctx, "https://zoom.us"); !errors.Is(err, browser.ErrSessionLost) {
		t.Fatalf("error = %v, want ErrSessionLost", err)
	}
}

func TestExecuteScriptReturnsRawValue(t *testing.T) {
	mux := http.NewServeMux()
	sessionHandler(t, mux)
	mux.HandleFunc("POST /session/sess-1/execute/sync", func(w http.ResponseWriter, r *http.Request) {
		writeValue(w, http.StatusOK, "payload")
	})

	client, _ := newTestClient(t, mux)
	ctx := context.Background()
	if err := client.StartSession(ctx, browser.SessionOptions{}); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	raw, err := client.ExecuteScript(ctx, "return localStorage.getItem('transcript');")
	if err != nil {
		t.Fatalf("ExecuteScript returned error: %v", err)
	}
	var got string
	if err := json.Unmarshal(raw, &got); err != nil || got != "payload" {
		t.Fatalf("script value = %s (err %v), want \"payload\"", raw, err)
	}
}
