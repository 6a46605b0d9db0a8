package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
)

type fakeHTTPClient struct {
	handler func(*http.Request) (*http.Response, error)
}

func (f fakeHTTPClient) Do(req *http.Request) (*http.Response, error) {
	if f.handler == nil {
		return nil, errors.New("no handler configured")
	}
	return f.handler(req)
}

func jsonResponse(t *testing.T, status int, payload any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal response: %v", err)
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader(buf)),
		Header:     make(http.Header),
	}
}

func TestGenerationClientGenerateText(t *testing.T) {
	client := NewGenerationClient("http://generator.test/", 0)
	client.SetHTTPClient(fakeHTTPClient{handler: func(r *http.Request) (*http.Response, error) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		if r.URL.String() != "http://generator.test/generate-text" {
			t.Fatalf("unexpected url %s", r.URL)
		}

		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if payload["user_prompt"] != "quiet day" || payload["emotional_state"] != "calm" {
			t.Fatalf("unexpected request payload: %v", payload)
		}

		return jsonResponse(t, http.StatusOK, map[string]any{
			"success": true,
			"text":    "breathe in, breathe out",
		}), nil
	}})

	text, err := client.GenerateText(context.Background(), "quiet day", "calm")
	if err != nil {
		t.Fatalf("GenerateText returned error: %v", err)
	}
	if text != "breathe in, breathe out" {
		t.Fatalf("unexpected text: %s", text)
	}
}

func TestGenerationClientSurfacesRemoteMessage(t *testing.T) {
	client := NewGenerationClient("http://generator.test", 0)
	client.SetHTTPClient(fakeHTTPClient{handler: func(r *http.Request) (*http.Response, error) {
		return jsonResponse(t, http.StatusOK, map[string]any{
			"success": false,
			"message": "model overloaded",
		}), nil
	}})

	_, err := client.GenerateText(context.Background(), "prompt", "calm")
	var remoteErr *RemoteGenerationError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("expected RemoteGenerationError, got %v", err)
	}
	if remoteErr.Message != "model overloaded" {
		t.Fatalf("expected remote message to pass through, got %s", remoteErr.Message)
	}
}

func TestGenerationClientRejectsNon200(t *testing.T) {
	client := NewGenerationClient("http://generator.test", 0)
	client.SetHTTPClient(fakeHTTPClient{handler: func(r *http.Request) (*http.Response, error) {
		return jsonResponse(t, http.StatusInternalServerError, map[string]any{
			"success": false,
			"message": "pipeline crashed",
		}), nil
	}})

	_, _, err := client.GenerateImage(context.Background(), "text", "")
	var remoteErr *RemoteGenerationError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("expected RemoteGenerationError, got %v", err)
	}
	if remoteErr.Message != "pipeline crashed" {
		t.Fatalf("unexpected message: %s", remoteErr.Message)
	}
}

func TestGenerationClientWrapsTransportError(t *testing.T) {
	client := NewGenerationClient("http://generator.test", 0)
	client.SetHTTPClient(fakeHTTPClient{handler: func(r *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	}})

	_, err := client.GenerateText(context.Background(), "prompt", "calm")
	var remoteErr *RemoteGenerationError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("expected RemoteGenerationError, got %v", err)
	}
}

func TestGenerationClientSessionPassThrough(t *testing.T) {
	client := NewGenerationClient("http://generator.test", 0)
	client.SetHTTPClient(fakeHTTPClient{handler: func(r *http.Request) (*http.Response, error) {
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}

		switch r.URL.Path {
		case "/generate-image":
			if payload["session_id"] != "" {
				t.Fatalf("expected empty session on first call, got %s", payload["session_id"])
			}
			return jsonResponse(t, http.StatusOK, map[string]any{
				"success":    true,
				"image_path": "/tmp/out/image.png",
				"session_id": "sess-42",
			}), nil
		case "/generate-video":
			if payload["session_id"] != "sess-42" {
				t.Fatalf("expected session to pass through, got %s", payload["session_id"])
			}
			if payload["image_path"] != "/tmp/out/image.png" {
				t.Fatalf("expected image path to pass through, got %s", payload["image_path"])
			}
			return jsonResponse(t, http.StatusOK, map[string]any{
				"success":    true,
				"video_path": "/tmp/out/video.mp4",
				"session_id": "sess-42",
			}), nil
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
			return nil, nil
		}
	}})

	imagePath, sessionID, err := client.GenerateImage(context.Background(), "text", "")
	if err != nil {
		t.Fatalf("GenerateImage returned error: %v", err)
	}
	if imagePath != "/tmp/out/image.png" || sessionID != "sess-42" {
		t.Fatalf("unexpected image result: %s %s", imagePath, sessionID)
	}

	videoPath, sessionID, err := client.GenerateVideo(context.Background(), "text", imagePath, sessionID)
	if err != nil {
		t.Fatalf("GenerateVideo returned error: %v", err)
	}
	if videoPath != "/tmp/out/video.mp4" || sessionID != "sess-42" {
		t.Fatalf("unexpected video result: %s %s", videoPath, sessionID)
	}
}

func TestGenerationClientDefaultTimeout(t *testing.T) {
	client := NewGenerationClient("http://generator.test", 0)

	httpClient, ok := client.http.(*http.Client)
	if !ok {
		t.Fatalf("expected *http.Client, got %T", client.http)
	}
	if httpClient.Timeout <= 0 {
		t.Fatal("expected a bounded default timeout")
	}

	client.SetHTTPClient(nil)
	httpClient, ok = client.http.(*http.Client)
	if !ok {
		t.Fatalf("expected *http.Client after reset, got %T", client.http)
	}
	if httpClient.Timeout <= 0 {
		t.Fatal("expected reset client to keep a bounded timeout")
	}
}
