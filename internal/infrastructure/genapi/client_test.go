package genapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/basel-ax/imagegen/internal/domain"
)

func TestGenerateImage_SendsPayload(t *testing.T) {
	var got generateBody
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/generate" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"signed_urls":["https://cdn/1.png"]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "secret", 5*time.Second)
	resp, err := c.GenerateImage(context.Background(), domain.ImageGenerationRequest{
		Prompt:        "a cat",
		GuidanceScale: 7,
		Height:        "512",
		Width:         "768",
		StepsClient:   0.5,
		StepsModel:    38,
		Model:         domain.ModelPlayground,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if auth != "Bearer secret" {
		t.Errorf("Authorization = %q", auth)
	}
	if got.Engine != "playground" || got.Steps != 38 || got.CfgScale != 7 {
		t.Errorf("unexpected body: %+v", got)
	}
	if got.Height != "512" || got.Width != "768" {
		t.Errorf("unexpected dimensions: %s x %s", got.Width, got.Height)
	}
	if len(got.TextPrompts) != 1 || got.TextPrompts[0].Text != "a cat" {
		t.Errorf("unexpected text prompts: %+v", got.TextPrompts)
	}
	if len(resp.SignedURLs) != 1 || resp.SignedURLs[0] != "https://cdn/1.png" {
		t.Errorf("unexpected urls: %v", resp.SignedURLs)
	}
}

func TestGenerateImage_ErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"prompt rejected"}`))
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL, "", 0).GenerateImage(context.Background(), domain.ImageGenerationRequest{Model: domain.ModelProteus})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.SignedURLs) != 0 {
		t.Errorf("expected no urls, got %v", resp.SignedURLs)
	}
	if resp.Message != "prompt rejected" {
		t.Errorf("Message = %q", resp.Message)
	}
}

func TestGenerateImage_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"bad key"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "nope", 0).GenerateImage(context.Background(), domain.ImageGenerationRequest{Model: domain.ModelProteus})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "401") || !strings.Contains(err.Error(), "bad key") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestGenerateImage_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", 0).GenerateImage(context.Background(), domain.ImageGenerationRequest{Model: domain.ModelProteus})
	if err == nil || !strings.Contains(err.Error(), "failed to decode response") {
		t.Errorf("expected decode error, got %v", err)
	}
}
