package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testSubject() Subject {
	return VehicleSubject(VehicleSnapshot{
		Model:           "Model 3 Long Range",
		BatteryLevel:    78,
		RangeRemaining:  241,
		SoftwareVersion: "2024.20.1",
		InsideTemp:      68,
		Odometer:        24850,
		Location:        "Palo Alto, CA",
	})
}

func newTestClient(url string) *Client {
	c := NewClient("test-key")
	c.Endpoint = url
	return c
}

func TestClientAdvise(t *testing.T) {
	var gotPath, gotKey, gotText string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")

		if r.Method != http.MethodPost {
			t.Errorf("Expected POST request, got %s", r.Method)
		}

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if len(req.Contents) == 1 && len(req.Contents[0].Parts) == 1 {
			gotText = req.Contents[0].Parts[0].Text
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Precondition the battery "},{"text":"before driving."}]}}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	text, err := client.Advise(context.Background(), "range tips", testSubject())
	if err != nil {
		t.Fatalf("Advise() error = %v", err)
	}

	if text != "Precondition the battery before driving." {
		t.Errorf("Advise() = %q", text)
	}
	if gotPath != "/v1beta/models/gemini-3-flash-preview:generateContent" {
		t.Errorf("path = %v", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("x-goog-api-key = %v, want test-key", gotKey)
	}
	for _, want := range []string{"Battery: 78% (241 mi)", "Odometer: 24850 miles", "User question: range tips"} {
		if !strings.Contains(gotText, want) {
			t.Errorf("prompt missing %q:\n%s", want, gotText)
		}
	}
}

func TestClientAdviseErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		checkFunc func(error) bool
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"code":401,"message":"API key not valid"}}`, IsAuthError},
		{"forbidden", http.StatusForbidden, ``, IsAuthError},
		{"server error", http.StatusInternalServerError, `oops`, IsHTTPError},
		{"rate limited", http.StatusTooManyRequests, `{"error":{"message":"quota"}}`, IsHTTPError},
		{"malformed json", http.StatusOK, `{"candidates":`, IsParseError},
		{"no candidates", http.StatusOK, `{"candidates":[]}`, IsEmptyError},
		{"blank text", http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"  "}]}}]}`, IsEmptyError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).Advise(context.Background(), "hi", testSubject())
			if err == nil {
				t.Fatal("Advise() expected error, got nil")
			}
			if !tt.checkFunc(err) {
				t.Errorf("unexpected error classification: %v", err)
			}
		})
	}
}

func TestClientAPIErrorMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"model not found"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Advise(context.Background(), "hi", testSubject())

	var adviceErr *AdviceError
	if !errors.As(err, &adviceErr) {
		t.Fatalf("error type = %T, want *AdviceError", err)
	}
	if adviceErr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %v, want 400", adviceErr.StatusCode)
	}
	if adviceErr.Message != "model not found" {
		t.Errorf("Message = %v, want 'model not found'", adviceErr.Message)
	}
}

func TestClientRequiresConfiguration(t *testing.T) {
	noKey := NewClient("")
	if _, err := noKey.Advise(context.Background(), "hi", testSubject()); !IsConfigError(err) {
		t.Errorf("missing key error = %v, want config error", err)
	}

	badEndpoint := NewClient("k")
	badEndpoint.Endpoint = "not a url"
	if _, err := badEndpoint.Advise(context.Background(), "hi", testSubject()); !IsConfigError(err) {
		t.Errorf("bad endpoint error = %v, want config error", err)
	}
}

func TestClientNetworkErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestClient(url).Advise(context.Background(), "hi", testSubject())
	if !IsNetworkError(err) {
		t.Errorf("closed server error = %v, want network error", err)
	}
}

func TestClientTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	client.SetTimeout(50 * time.Millisecond)

	_, err := client.Advise(context.Background(), "hi", testSubject())
	var adviceErr *AdviceError
	if !errors.As(err, &adviceErr) || adviceErr.Type != ErrTypeTimeout {
		t.Errorf("error = %v, want timeout", err)
	}
}

func TestGetShortErrorMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{NewAuthError(0, "bad key"), "Assistant rejected the API key"},
		{NewHTTPError(503, "down"), "Assistant error (HTTP 503)"},
		{NewEmptyError("none"), "Assistant returned no text"},
		{NewConfigError("no API key configured"), "no API key configured"},
		{errors.New("plain"), "plain"},
	}
	for _, tt := range tests {
		if got := GetShortErrorMessage(tt.err); got != tt.want {
			t.Errorf("GetShortErrorMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestPromptForLeaseSubject(t *testing.T) {
	p := Prompt(LeaseSubject(LeaseSummary{
		DaysLeft:       58,
		CurrentMileage: 24850,
		AllowedMileage: 30000,
		Phase:          "ReturnWindow",
	}), "should I buy?")

	for _, want := range []string{"Days Left: 58", "24850 / 30000 mi (83% used)", "Phase: ReturnWindow", "User question: should I buy?"} {
		if !strings.Contains(p, want) {
			t.Errorf("Prompt() missing %q:\n%s", want, p)
		}
	}
}
