package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/taksi8637-pixel/taksi2/pkg/gallery"
	"github.com/taksi8637-pixel/taksi2/pkg/gate"
	"github.com/taksi8637-pixel/taksi2/pkg/phones"
	"github.com/taksi8637-pixel/taksi2/pkg/server"
	"github.com/taksi8637-pixel/taksi2/pkg/store"
	"github.com/taksi8637-pixel/taksi2/pkg/testimonial"
)

// newTestServer assembles a full server over an in-memory store, wired the
// same way the serve command wires production.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()
	st := store.NewMemoryStore()
	hub := server.NewHub(logger)

	g := gate.New(
		gate.StaticVerifier{Username: "Admin", Password: "Admin123"},
		gate.WithNotifier(hub),
		gate.WithLogger(logger),
	)

	srv := server.New(server.Config{
		Logger:         logger,
		Gate:           g,
		Phones:         phones.New(ctx, st, g, phones.WithNotifier(hub), phones.WithLogger(logger)),
		Gallery:        gallery.New(ctx, st, g, gallery.WithNotifier(hub), gallery.WithLogger(logger)),
		Testimonials:   testimonial.New(testimonial.WithNotifier(hub)),
		Hub:            hub,
		DisableMetrics: true,
	})

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		hub.Close()
		ts.Close()
	})
	return ts
}

func postJSON(t *testing.T, ts *httptest.Server, path string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func doJSON(t *testing.T, ts *httptest.Server, method, path string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decodeInto(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func login(t *testing.T, ts *httptest.Server) {
	t.Helper()
	resp := postJSON(t, ts, "/api/login", map[string]string{
		"username": "Admin",
		"password": "Admin123",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: status %d", resp.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status %d", resp.StatusCode)
	}
}

func TestLogin_WrongCredentials(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts, "/api/login", map[string]string{
		"username": "Admin",
		"password": "wrong",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.StatusCode)
	}

	var session struct {
		Authorized bool `json:"authorized"`
	}
	sresp, _ := http.Get(ts.URL + "/api/session")
	decodeInto(t, sresp, &session)
	if session.Authorized {
		t.Error("expected session to stay unauthorized")
	}
}

func TestSessionLifecycle(t *testing.T) {
	ts := newTestServer(t)

	login(t, ts)

	var session struct {
		Authorized bool `json:"authorized"`
	}
	resp, _ := http.Get(ts.URL + "/api/session")
	decodeInto(t, resp, &session)
	if !session.Authorized {
		t.Fatal("expected authorized session after login")
	}

	lresp := postJSON(t, ts, "/api/logout", struct{}{})
	lresp.Body.Close()

	resp, _ = http.Get(ts.URL + "/api/session")
	decodeInto(t, resp, &session)
	if session.Authorized {
		t.Error("expected unauthorized session after logout")
	}
}

func TestContent(t *testing.T) {
	ts := newTestServer(t)

	var content struct {
		Phones       []phones.Record     `json:"phones"`
		Primary      phones.Record       `json:"primary"`
		CallLink     string              `json:"call_link"`
		WhatsAppLink string              `json:"whatsapp_link"`
		Gallery      []string            `json:"gallery"`
		Testimonials []testimonial.Entry `json:"testimonials"`
		Authorized   bool                `json:"authorized"`
	}
	resp, err := http.Get(ts.URL + "/api/content")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	decodeInto(t, resp, &content)

	if len(content.Phones) != 1 || content.Primary.Number != "+905401490040" {
		t.Errorf("unexpected phones %+v", content.Phones)
	}
	if content.CallLink != "tel:+905401490040" {
		t.Errorf("unexpected call link %q", content.CallLink)
	}
	if !strings.HasPrefix(content.WhatsAppLink, "https://wa.me/905401490040?text=") {
		t.Errorf("unexpected whatsapp link %q", content.WhatsAppLink)
	}
	if len(content.Gallery) != 4 {
		t.Errorf("expected 4 gallery images, got %d", len(content.Gallery))
	}
	if len(content.Testimonials) != 3 {
		t.Errorf("expected 3 testimonials, got %d", len(content.Testimonials))
	}
	if content.Authorized {
		t.Error("expected unauthorized content view")
	}
}

func TestPhones_MutationsRequireLogin(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts, "/api/phones", map[string]string{
		"number": "05321112233", "label": "Gece Hattı",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.StatusCode)
	}
}

func TestPhones_CRUD(t *testing.T) {
	ts := newTestServer(t)
	login(t, ts)

	// Add
	var added phones.Record
	resp := postJSON(t, ts, "/api/phones", map[string]string{
		"number": "05321112233", "label": "Gece Hattı",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add: status %d", resp.StatusCode)
	}
	decodeInto(t, resp, &added)
	if added.Formatted != "0532 111 22 33" {
		t.Errorf("unexpected formatting %q", added.Formatted)
	}

	// Update
	resp = doJSON(t, ts, http.MethodPut, fmt.Sprintf("/api/phones/%d", added.ID), map[string]string{
		"number": "05329998877", "label": "Yeni",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: status %d", resp.StatusCode)
	}

	// Update unknown id
	resp = doJSON(t, ts, http.MethodPut, "/api/phones/424242", map[string]string{
		"number": "1", "label": "x",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("update unknown: expected 404, got %d", resp.StatusCode)
	}

	// Remove
	resp = doJSON(t, ts, http.MethodDelete, fmt.Sprintf("/api/phones/%d", added.ID), nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("remove: status %d", resp.StatusCode)
	}

	// Removing the last record is refused
	var records []phones.Record
	lresp, _ := http.Get(ts.URL + "/api/phones")
	decodeInto(t, lresp, &records)
	if len(records) != 1 {
		t.Fatalf("expected 1 record left, got %d", len(records))
	}
	resp = doJSON(t, ts, http.MethodDelete, fmt.Sprintf("/api/phones/%d", records[0].ID), nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("remove last: expected 422, got %d", resp.StatusCode)
	}
}

func TestPhones_BlankInput(t *testing.T) {
	ts := newTestServer(t)
	login(t, ts)

	resp := postJSON(t, ts, "/api/phones", map[string]string{"number": "  ", "label": "x"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", resp.StatusCode)
	}
}

func uploadFile(t *testing.T, ts *httptest.Server, name string, data []byte) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	fw.Write(data)
	mw.Close()

	resp, err := http.Post(ts.URL+"/api/gallery/upload", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	return resp
}

func waitStaged(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		var pending struct {
			Pending string `json:"pending"`
			Staged  bool   `json:"staged"`
		}
		resp, err := http.Get(ts.URL + "/api/gallery/pending")
		if err != nil {
			t.Fatalf("pending: %v", err)
		}
		decodeInto(t, resp, &pending)
		if pending.Staged {
			return pending.Pending
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("upload never staged")
	return ""
}

func TestGallery_UploadCommitFlow(t *testing.T) {
	ts := newTestServer(t)
	login(t, ts)

	resp := uploadFile(t, ts, "photo.png", []byte("pngbytes"))
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("upload: status %d", resp.StatusCode)
	}

	staged := waitStaged(t, ts)
	if !strings.HasPrefix(staged, "data:") {
		t.Errorf("expected data URI, got %q", staged)
	}

	cresp := postJSON(t, ts, "/api/gallery/commit", struct{}{})
	cresp.Body.Close()
	if cresp.StatusCode != http.StatusOK {
		t.Fatalf("commit: status %d", cresp.StatusCode)
	}

	var images []string
	gresp, _ := http.Get(ts.URL + "/api/gallery")
	decodeInto(t, gresp, &images)
	if len(images) != 5 || images[4] != staged {
		t.Errorf("expected staged image appended, got %d images", len(images))
	}
}

func TestGallery_CommitWithoutUpload(t *testing.T) {
	ts := newTestServer(t)
	login(t, ts)

	resp := postJSON(t, ts, "/api/gallery/commit", struct{}{})
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409, got %d", resp.StatusCode)
	}
}

func TestGallery_CancelDiscardsUpload(t *testing.T) {
	ts := newTestServer(t)
	login(t, ts)

	resp := uploadFile(t, ts, "photo.png", []byte("pngbytes"))
	resp.Body.Close()
	waitStaged(t, ts)

	cresp := postJSON(t, ts, "/api/gallery/cancel", struct{}{})
	cresp.Body.Close()
	if cresp.StatusCode != http.StatusOK {
		t.Fatalf("cancel: status %d", cresp.StatusCode)
	}

	var images []string
	gresp, _ := http.Get(ts.URL + "/api/gallery")
	decodeInto(t, gresp, &images)
	if len(images) != 4 {
		t.Errorf("expected gallery unchanged, got %d images", len(images))
	}
}

func TestGallery_Remove(t *testing.T) {
	ts := newTestServer(t)
	login(t, ts)

	resp := doJSON(t, ts, http.MethodDelete, "/api/gallery/0", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("remove: status %d", resp.StatusCode)
	}

	resp = doJSON(t, ts, http.MethodDelete, "/api/gallery/99", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("remove out of range: expected 404, got %d", resp.StatusCode)
	}
}

func TestGallery_UploadRequiresLogin(t *testing.T) {
	ts := newTestServer(t)

	resp := uploadFile(t, ts, "photo.png", []byte("pngbytes"))
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.StatusCode)
	}
}

func TestTestimonials(t *testing.T) {
	ts := newTestServer(t)

	// No login required.
	resp := postJSON(t, ts, "/api/testimonials", map[string]any{
		"name": "Fatma Şahin", "rating": 5, "comment": "Çok memnun kaldım.",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add: status %d", resp.StatusCode)
	}

	var entries []testimonial.Entry
	gresp, _ := http.Get(ts.URL + "/api/testimonials")
	decodeInto(t, gresp, &entries)
	if len(entries) != 4 || entries[0].Name != "Fatma Şahin" {
		t.Errorf("expected prepended entry, got %+v", entries)
	}

	// Blank comment rejected.
	resp = postJSON(t, ts, "/api/testimonials", map[string]any{
		"name": "X", "rating": 5, "comment": " ",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", resp.StatusCode)
	}
}

func TestComplaint(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts, "/api/complaints", map[string]string{
		"name": "Ali", "phone": "05321112233", "message": "Araç geç geldi.",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestLiveUpdates_LoginToast(t *testing.T) {
	ts := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	login(t, ts)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, frame, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var ev struct {
		Event string `json:"event"`
		Data  struct {
			Level   string `json:"level"`
			Message string `json:"message"`
		} `json:"data"`
	}
	if err := json.Unmarshal(frame, &ev); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if ev.Event != "taksi:toast" {
		t.Errorf("expected toast event, got %q", ev.Event)
	}
	if ev.Data.Level != "success" || ev.Data.Message != "Admin olarak giriş yaptınız!" {
		t.Errorf("unexpected toast %+v", ev.Data)
	}
}

func TestLiveUpdates_ContentChanged(t *testing.T) {
	ts := newTestServer(t)
	login(t, ts)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	resp := postJSON(t, ts, "/api/phones", map[string]string{
		"number": "05321112233", "label": "Gece Hattı",
	})
	resp.Body.Close()

	// The mutation produces a toast and a content-changed event; order is
	// toast first (surfaced inside the registry), then the content signal.
	sawContent := false
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for i := 0; i < 2; i++ {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var ev struct {
			Event string `json:"event"`
			Data  struct {
				Collection string `json:"collection"`
			} `json:"data"`
		}
		if err := json.Unmarshal(frame, &ev); err != nil {
			t.Fatalf("decode frame: %v", err)
		}
		if ev.Event == "taksi:content" && ev.Data.Collection == "phones" {
			sawContent = true
		}
	}
	if !sawContent {
		t.Error("expected a content-changed event for phones")
	}
}

func TestLiveUpdates_OriginChecks(t *testing.T) {
	ts := newTestServer(t)
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	// Cross-site pages cannot attach to the event stream.
	header := http.Header{"Origin": {"http://evil.example"}}
	if conn, _, err := websocket.DefaultDialer.Dial(wsURL, header); err == nil {
		conn.Close()
		t.Fatal("expected cross-origin dial to be refused")
	}

	// The site's own origin connects fine.
	header = http.Header{"Origin": {ts.URL}}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("same-origin dial: %v", err)
	}
	conn.Close()
}

func TestStatic_SPAFallback(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>taksi</html>"), 0644)
	os.WriteFile(filepath.Join(dir, "style.css"), []byte("body{}"), 0644)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	g := gate.New(gate.StaticVerifier{Username: "Admin", Password: "Admin123"})
	ctx := context.Background()
	st := store.NewMemoryStore()

	srv := server.New(server.Config{
		Logger:         logger,
		Gate:           g,
		Phones:         phones.New(ctx, st, g),
		Gallery:        gallery.New(ctx, st, g),
		Testimonials:   testimonial.New(),
		StaticDir:      dir,
		DisableMetrics: true,
	})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	// Real file served as-is.
	resp, err := http.Get(ts.URL + "/style.css")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "body{}" {
		t.Errorf("unexpected body %q", body)
	}

	// Unknown paths fall back to index.html.
	resp, err = http.Get(ts.URL + "/some/deep/link")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "taksi") {
		t.Errorf("expected index fallback, got %q", body)
	}
}
