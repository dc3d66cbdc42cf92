package api

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andocmdo/eink-display-control-panel/config"
	"github.com/andocmdo/eink-display-control-panel/server"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) *server.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Defaults()
	cfg.DataFile = filepath.Join(t.TempDir(), "data.json")
	cfg.WatchDataFile = false
	if mutate != nil {
		mutate(cfg)
	}

	srv, err := server.New(server.NewConfig(cfg))
	if err != nil {
		t.Fatalf("server.New() error = %v", err)
	}
	t.Cleanup(func() { srv.Close() })

	SetupRoutes(srv.Router(), NewHandlers(srv))
	return srv
}

func do(srv *server.Server, method, path string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON %q: %v", w.Body.String(), err)
	}
	return out
}

func todoIDs(t *testing.T, srv *server.Server) []string {
	t.Helper()
	todos, err := srv.Dashboard().ListTodos(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	ids := make([]string, len(todos))
	for i, td := range todos {
		ids[i] = td.ID
	}
	return ids
}

func TestTodoRoutes(t *testing.T) {
	srv := newTestServer(t, nil)

	for i := 0; i < 2; i++ {
		w := do(srv, http.MethodPost, "/todos/add", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("add: status %d", w.Code)
		}
		if got := strings.Count(w.Body.String(), "<li>"); got != i+1 {
			t.Errorf("add #%d: fragment has %d items", i+1, got)
		}
	}
	ids := todoIDs(t, srv)

	// Update text, markup in it stays escaped in the fragment
	w := do(srv, http.MethodPost, "/todos/"+ids[1]+"/update", url.Values{"text": {"<b>milk</b>"}})
	if w.Code != http.StatusOK || w.Body.Len() != 0 {
		t.Errorf("update: status %d body %q", w.Code, w.Body.String())
	}
	w = do(srv, http.MethodGet, "/todos", nil)
	if !strings.Contains(w.Body.String(), "&lt;b&gt;milk&lt;/b&gt;") {
		t.Errorf("expected escaped text in fragment:\n%s", w.Body.String())
	}

	// Move the second todo up
	w = do(srv, http.MethodPost, "/todos/"+ids[1]+"/move/up", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("move: status %d", w.Code)
	}
	body := w.Body.String()
	if strings.Index(body, ids[1]) > strings.Index(body, ids[0]) {
		t.Errorf("expected %s before %s after move:\n%s", ids[1], ids[0], body)
	}

	w = do(srv, http.MethodPost, "/todos/"+ids[1]+"/move/sideways", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad direction: expected 400, got %d", w.Code)
	}

	// Remove twice, second is a no-op
	for i := 0; i < 2; i++ {
		w = do(srv, http.MethodDelete, "/todos/"+ids[0]+"/remove", nil)
		if w.Code != http.StatusOK || strings.Contains(w.Body.String(), ids[0]) {
			t.Errorf("remove #%d: status %d body %s", i+1, w.Code, w.Body.String())
		}
	}
	if got := todoIDs(t, srv); len(got) != 1 || got[0] != ids[1] {
		t.Errorf("unexpected todos after remove: %v", got)
	}
}

func TestIndexFormRoundTrip(t *testing.T) {
	srv := newTestServer(t, nil)

	w := do(srv, http.MethodPost, "/", url.Values{
		"weather_0": {"Paris"},
		"weather_1": {""},
		"weather_2": {" Lima "},
		"stock_0":   {"AAPL"},
		"stock_1":   {"AAPL"},
		"stock_10":  {"MSFT"},
	})
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/" {
		t.Fatalf("expected redirect to /, got %d %q", w.Code, w.Header().Get("Location"))
	}

	snap, err := srv.Dashboard().Snapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got := snap.Locations(); strings.Join(got, ",") != "Paris,Lima" {
		t.Errorf("unexpected locations %v", got)
	}
	if got := snap.Tickers(); strings.Join(got, ",") != "AAPL,MSFT" {
		t.Errorf("unexpected tickers %v", got)
	}

	w = do(srv, http.MethodGet, "/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("index: status %d", w.Code)
	}
	page := w.Body.String()
	for _, want := range []string{`name="weather_2"`, `name="stock_9"`, `value="Paris"`, `id="todo-list"`} {
		if !strings.Contains(page, want) {
			t.Errorf("index page is missing %s", want)
		}
	}
}

func TestIndexedValues(t *testing.T) {
	form := url.Values{
		"weather_10": {"c"},
		"weather_2":  {"b"},
		"weather_0":  {"a"},
		"weather_x":  {"ignored"},
		"stock_0":    {"ignored"},
	}
	if got := indexedValues(form, "weather_"); strings.Join(got, ",") != "a,b,c" {
		t.Errorf("indexedValues() = %v", got)
	}
}

func TestTrackedListRoutes(t *testing.T) {
	srv := newTestServer(t, nil)

	w := do(srv, http.MethodPost, "/weather", url.Values{"location": {"Oslo", "Rome", "Oslo"}})
	if w.Code != http.StatusOK {
		t.Fatalf("weather: status %d", w.Code)
	}
	if data, _ := decode(t, w)["data"].([]any); len(data) != 2 {
		t.Errorf("expected 2 locations, got %s", w.Body.String())
	}

	w = do(srv, http.MethodPost, "/stocks", url.Values{"ticker": {"VTI"}})
	if w.Code != http.StatusOK {
		t.Fatalf("stocks: status %d", w.Code)
	}

	w = do(srv, http.MethodGet, "/api/dashboard", nil)
	data, _ := decode(t, w)["data"].(map[string]any)
	if stocks, _ := data["stocks"].([]any); len(stocks) != 1 {
		t.Errorf("unexpected dashboard %s", w.Body.String())
	}
}

func TestUpdateRoutes(t *testing.T) {
	srv := newTestServer(t, nil)

	// Nothing tracked yet
	w := do(srv, http.MethodGet, "/update/stocks", nil)
	resp := decode(t, w)
	if w.Code != http.StatusOK || resp["updated"] != float64(0) || resp["status"] != "success" {
		t.Errorf("empty stocks refresh: %d %s", w.Code, w.Body.String())
	}
	if stocks, ok := resp["stocks"].([]any); !ok || len(stocks) != 0 {
		t.Errorf("expected an empty stocks list, got %s", w.Body.String())
	}

	ctx := context.Background()
	if _, err := srv.Dashboard().SetTrackedLists(ctx, []string{"Paris", "Lima"}, []string{"AAPL"}); err != nil {
		t.Fatal(err)
	}

	w = do(srv, http.MethodGet, "/update/stocks", nil)
	if resp := decode(t, w); resp["updated"] != float64(1) {
		t.Errorf("stocks refresh: %s", w.Body.String())
	}
	w = do(srv, http.MethodGet, "/update/weather", nil)
	if resp := decode(t, w); resp["updated"] != float64(2) {
		t.Errorf("weather refresh: %s", w.Body.String())
	}

	snap, _ := srv.Dashboard().Snapshot(ctx)
	if snap.Stocks[0].Price == nil || snap.Weather[1].Temperature == nil {
		t.Errorf("expected refreshed values to be persisted: %+v", snap)
	}
}

func TestUpdateDisplayNotConfigured(t *testing.T) {
	srv := newTestServer(t, nil)

	w := do(srv, http.MethodGet, "/update/display", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	resp := decode(t, w)
	if resp["status"] != "error" || resp["stage"] != "not_configured" {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}

func TestUpdateDisplay(t *testing.T) {
	device := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			io.WriteString(w, `{"access_token":"tok"}`)
		case "/api/screens/7":
			io.WriteString(w, `{"id":7}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer device.Close()

	srv := newTestServer(t, func(cfg *config.Config) {
		cfg.Device.BaseURL = device.URL
		cfg.Device.Username = "me"
		cfg.Device.Password = "secret"
		cfg.Device.ScreenID = "7"
	})

	w := do(srv, http.MethodGet, "/update/display", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decode(t, w)
	if resp["screen_id"] != "7" || resp["server_response"] == nil {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}

func TestPreviewAndHealth(t *testing.T) {
	srv := newTestServer(t, nil)

	w := do(srv, http.MethodGet, "/api/display/preview", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "<h2>Weather</h2>") {
		t.Errorf("preview: %d %s", w.Code, w.Body.String())
	}
	w = do(srv, http.MethodGet, "/api/display/preview?format=markdown", nil)
	if !strings.Contains(w.Body.String(), "## Weather") {
		t.Errorf("markdown preview: %s", w.Body.String())
	}

	w = do(srv, http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Errorf("healthz: %d", w.Code)
	}
}

func TestCorruptStoreIsInternalError(t *testing.T) {
	var dataFile string
	srv := newTestServer(t, func(cfg *config.Config) { dataFile = cfg.DataFile })
	if err := os.WriteFile(dataFile, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	w := do(srv, http.MethodGet, "/todos", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	resp := decode(t, w)
	if errObj, _ := resp["error"].(map[string]any); errObj["code"] != string(ErrCodeInternal) {
		t.Errorf("unexpected error body %s", w.Body.String())
	}
}

func TestNotificationStream(t *testing.T) {
	srv := newTestServer(t, nil)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	// closes the stream before the test server waits on it
	t.Cleanup(srv.Notifications().Shutdown)

	resp, err := http.Get(ts.URL + "/api/notifications/stream")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("unexpected content type %q", ct)
	}

	lines := make(chan string, 10)
	go func() {
		r := bufio.NewReader(resp.Body)
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				close(lines)
				return
			}
			if strings.HasPrefix(line, "data: ") {
				lines <- strings.TrimSpace(strings.TrimPrefix(line, "data: "))
			}
		}
	}()

	readEvent := func() map[string]any {
		t.Helper()
		select {
		case line, ok := <-lines:
			if !ok {
				t.Fatal("stream closed")
			}
			var ev map[string]any
			if err := json.Unmarshal([]byte(line), &ev); err != nil {
				t.Fatalf("bad event %q: %v", line, err)
			}
			return ev
		case <-time.After(2 * time.Second):
			t.Fatal("no event received")
		}
		return nil
	}

	if ev := readEvent(); ev["type"] != "connected" {
		t.Fatalf("expected connected event first, got %v", ev)
	}

	post, err := http.Post(ts.URL+"/todos/add", "application/x-www-form-urlencoded", nil)
	if err != nil {
		t.Fatal(err)
	}
	post.Body.Close()

	ev := readEvent()
	data, _ := ev["data"].(map[string]any)
	if ev["type"] != "dashboard-changed" || data["section"] != "todos" {
		t.Errorf("unexpected event %v", ev)
	}
}
