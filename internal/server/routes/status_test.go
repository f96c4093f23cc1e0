package routes

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"

	"github.com/cropd/cropd/internal/config"
)

func TestStatusReportsConfiguration(t *testing.T) {
	app := newDiagnosticsApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/-/status", nil))
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var payload statusPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if payload.MaxCrops != "12" || len(payload.SourceDirs) != 2 || payload.MaxDimension != 2048 {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if !strings.HasPrefix(payload.Version, "cropd ") {
		t.Fatalf("unexpected version %q", payload.Version)
	}
}

func TestURLBuildsDerivativeLink(t *testing.T) {
	app := newDiagnosticsApp(t)

	testCases := []struct {
		query string
		want  string
	}{
		{"src=/uploads/photo.jpg&w=200&h=100", "https://cdn.example.com/uploads/photo-200x100.jpg"},
		{"src=uploads/photo.jpg&w=200", "https://cdn.example.com/uploads/photo-200x_.jpg"},
		{"src=/a/b.png&w=50&h=50&opt=resize&opt=quadrant(T)", "https://cdn.example.com/a/b-50x50-resize-quadrant(T).png"},
	}
	for _, tc := range testCases {
		resp, err := app.Test(httptest.NewRequest("GET", "/-/url?"+tc.query, nil))
		if err != nil {
			t.Fatalf("app.Test failed: %v", err)
		}
		body, _ := io.ReadAll(resp.Body)
		var payload map[string]string
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Fatalf("decode %s: %v", body, err)
		}
		if payload["url"] != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.query, tc.want, payload["url"])
		}
	}
}

func TestURLRejectsBadInput(t *testing.T) {
	app := newDiagnosticsApp(t)

	for _, query := range []string{"w=10", "src=/a.jpg&w=abc", "src=/a.jpg&h=-1", "src=/a.jpg&opt=bad(opt"} {
		resp, err := app.Test(httptest.NewRequest("GET", "/-/url?"+query, nil))
		if err != nil {
			t.Fatalf("app.Test failed: %v", err)
		}
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", query, resp.StatusCode)
		}
	}
}

func newDiagnosticsApp(t *testing.T) *fiber.App {
	t.Helper()
	cfg := &config.Config{
		Image: config.ImageConfig{
			Host:         "https://cdn.example.com",
			SourceDirs:   []string{"/srv/public", "/srv/uploads"},
			MaxCrops:     12,
			MaxDimension: 2048,
			JPEGQuality:  90,
		},
	}
	app := fiber.New()
	RegisterDiagnosticRoutes(app, cfg)
	return app
}
