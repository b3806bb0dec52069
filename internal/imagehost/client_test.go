package imagehost

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// 正常系: multipartでPOSTされ、レスポンスのlinkが返ることを検証
func TestClient_Upload_ReturnsLink(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("failed to parse multipart form: %v", err)
		}
		if _, _, err := r.FormFile("image"); err != nil {
			t.Errorf("expected image form file: %v", err)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]string{"link": "https://img.example.com/abc.png"},
		})
	}))
	defer server.Close()

	client := NewClient(server.Client(), newTestLogger(), server.URL, "client-id-1")

	url, err := client.Upload(context.Background(), "avatar.png", strings.NewReader("fake-image-bytes"))
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if url != "https://img.example.com/abc.png" {
		t.Errorf("url = %q, want %q", url, "https://img.example.com/abc.png")
	}
	if gotAuth != "Client-ID client-id-1" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Client-ID client-id-1")
	}
}

// エラーステータスでエラーが返ることを検証
func TestClient_Upload_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.Client(), newTestLogger(), server.URL, "client-id-1")

	if _, err := client.Upload(context.Background(), "avatar.png", strings.NewReader("x")); err == nil {
		t.Error("expected error for non-200 response")
	}
}

// linkが空のレスポンスでエラーが返ることを検証
func TestClient_Upload_MissingLink(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": false})
	}))
	defer server.Close()

	client := NewClient(server.Client(), newTestLogger(), server.URL, "client-id-1")

	if _, err := client.Upload(context.Background(), "avatar.png", strings.NewReader("x")); err == nil {
		t.Error("expected error for response without link")
	}
}
