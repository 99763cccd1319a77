package web_test

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/qrstudio/core/cookie"
	"github.com/dmitrymomot/qrstudio/internal/export"
	"github.com/dmitrymomot/qrstudio/internal/web"
	"github.com/dmitrymomot/qrstudio/pkg/ratelimiter"
)

const testSecret = "test-secret-key-32-characters!!!"

type testApp struct {
	handler  http.Handler
	sessions *web.Sessions
	pipeline *export.Pipeline
}

func newTestApp(t *testing.T, opts ...web.Option) testApp {
	t.Helper()

	cookies, err := cookie.New([]string{testSecret})
	require.NoError(t, err)

	sessions := web.NewSessions(cookies)
	pipeline := export.New()
	app := web.New(sessions, append([]web.Option{web.WithPipeline(pipeline)}, opts...)...)
	return testApp{handler: app.Handler(), sessions: sessions, pipeline: pipeline}
}

// client replays the session cookie across requests.
type client struct {
	t       *testing.T
	h       http.Handler
	cookies map[string]*http.Cookie
	remote  string
}

func (a testApp) client(t *testing.T) *client {
	return &client{t: t, h: a.handler, cookies: map[string]*http.Cookie{}}
}

func (c *client) do(method, path string, form url.Values, header http.Header) *httptest.ResponseRecorder {
	c.t.Helper()

	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	r := httptest.NewRequest(method, path, body)
	if form != nil {
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, vs := range header {
		for _, v := range vs {
			r.Header.Add(k, v)
		}
	}
	for _, ck := range c.cookies {
		r.AddCookie(ck)
	}
	if c.remote != "" {
		r.RemoteAddr = c.remote
	}

	w := httptest.NewRecorder()
	c.h.ServeHTTP(w, r)
	for _, ck := range w.Result().Cookies() {
		c.cookies[ck.Name] = ck
	}
	return w
}

func asJSON() http.Header {
	return http.Header{"Accept": []string{"application/json"}}
}

func decodeState(t *testing.T, w *httptest.ResponseRecorder) web.StateView {
	t.Helper()
	var v web.StateView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestIndex(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	w := app.client(t).do(http.MethodGet, "/", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("Content-Security-Policy"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	body := w.Body.String()
	assert.Contains(t, body, `value="https://example.com"`)
	assert.Contains(t, body, `value="#000000"`)
	assert.Equal(t, 4, strings.Count(body, "<option "))
	for _, size := range []string{"200", "300", "400", "500"} {
		assert.Contains(t, body, `<option value="`+size+`"`)
	}
	assert.Contains(t, body, `<option value="300" selected>`)
	assert.Contains(t, body, `<svg xmlns="http://www.w3.org/2000/svg" width="200" height="200"`)
	assert.Contains(t, body, "Download")
	assert.Contains(t, body, "Clear")

	assert.Equal(t, 1, app.sessions.Len())
}

func TestSessionIsPerVisitor(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	alice := app.client(t)
	bob := app.client(t)

	w := alice.do(http.MethodPost, "/text", url.Values{"text": {"alice"}}, asJSON())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", decodeState(t, w).Text)

	w = alice.do(http.MethodGet, "/state", nil, nil)
	assert.Equal(t, "alice", decodeState(t, w).Text)

	w = bob.do(http.MethodGet, "/state", nil, nil)
	assert.Equal(t, "https://example.com", decodeState(t, w).Text)

	assert.Equal(t, 2, app.sessions.Len())
}

func TestTamperedCookieStartsNewSession(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	c := app.client(t)
	c.do(http.MethodPost, "/text", url.Values{"text": {"mine"}}, asJSON())

	ck := c.cookies[web.DefaultSessionCookie]
	require.NotNil(t, ck)
	ck.Value = "x" + ck.Value

	w := c.do(http.MethodGet, "/state", nil, nil)
	assert.Equal(t, "https://example.com", decodeState(t, w).Text)
	assert.Equal(t, 2, app.sessions.Len())
}

func TestFormRedirects(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	c := app.client(t)

	w := c.do(http.MethodPost, "/text", url.Values{"text": {"hello"}}, nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = c.do(http.MethodPost, "/color", url.Values{"color": {"#00ff00"}}, http.Header{"HX-Request": {"true"}})
	assert.Equal(t, http.StatusOK, w.Code)
	state := decodeState(t, w)
	assert.Equal(t, "hello", state.Text)
	assert.Equal(t, "#00ff00", state.Color)
	assert.Equal(t, []int{200, 300, 400, 500}, state.Sizes)
}

func TestSetColorValidation(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	c := app.client(t)

	for _, bad := range []string{"red", "#fff", "#12345g", "", `#000000"/>`} {
		w := c.do(http.MethodPost, "/color", url.Values{"color": {bad}}, asJSON())
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
	}

	w := c.do(http.MethodPost, "/color", url.Values{"color": {"#FF0000"}}, asJSON())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "#FF0000", decodeState(t, w).Color)
}

func TestSetSizeValidation(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	c := app.client(t)

	for _, bad := range []string{"250", "0", "-300", "big", "1000"} {
		w := c.do(http.MethodPost, "/size", url.Values{"size": {bad}}, asJSON())
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
	}
	w := c.do(http.MethodGet, "/state", nil, nil)
	assert.Equal(t, 300, decodeState(t, w).Size)

	w = c.do(http.MethodPost, "/size", url.Values{"size": {"500"}}, asJSON())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 500, decodeState(t, w).Size)
}

func TestMissingField(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	w := app.client(t).do(http.MethodPost, "/text", url.Values{}, asJSON())
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "bad_request", body["code"])
}

func TestEmptyTextIsAccepted(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	c := app.client(t)

	w := c.do(http.MethodPost, "/text", url.Values{"text": {""}}, asJSON())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "", decodeState(t, w).Text)

	w = c.do(http.MethodGet, "/preview.svg", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReset(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	c := app.client(t)
	c.do(http.MethodPost, "/text", url.Values{"text": {"abc"}}, asJSON())
	c.do(http.MethodPost, "/color", url.Values{"color": {"#123456"}}, asJSON())
	c.do(http.MethodPost, "/size", url.Values{"size": {"200"}}, asJSON())

	w := c.do(http.MethodPost, "/reset", nil, asJSON())
	require.Equal(t, http.StatusOK, w.Code)
	state := decodeState(t, w)
	assert.Equal(t, "https://example.com", state.Text)
	assert.Equal(t, "#000000", state.Color)
	assert.Equal(t, 300, state.Size)
}

func TestPreview(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	c := app.client(t)

	w := c.do(http.MethodGet, "/preview.svg", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/svg+xml;charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "<svg"))

	c.do(http.MethodPost, "/text", url.Values{"text": {strings.Repeat("x", 4000)}}, asJSON())
	w = c.do(http.MethodGet, "/preview.svg", nil, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestExport(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	c := app.client(t)
	c.do(http.MethodPost, "/size", url.Values{"size": {"400"}}, asJSON())

	w := c.do(http.MethodGet, "/export", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="qr-code.png"`, w.Header().Get("Content-Disposition"))

	img, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())
	assert.Equal(t, 400, img.Bounds().Dy())

	assert.Equal(t, 0, app.pipeline.Registry().Len())
}

func TestExportWithoutGraphic(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	c := app.client(t)
	c.do(http.MethodPost, "/text", url.Values{"text": {strings.Repeat("x", 4000)}}, asJSON())

	w := c.do(http.MethodGet, "/export", nil, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.Bytes())
	assert.Empty(t, w.Header().Get("Content-Disposition"))
}

func newExportLimiter(t *testing.T, capacity int) *ratelimiter.Limiter {
	t.Helper()
	limiter, err := ratelimiter.New(ratelimiter.NewMemoryStore(), ratelimiter.Config{
		Capacity:       capacity,
		RefillRate:     1,
		RefillInterval: time.Minute,
	})
	require.NoError(t, err)
	return limiter
}

func TestExportRateLimit(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, web.WithExportLimiter(newExportLimiter(t, 2)))
	first := app.client(t)
	first.do(http.MethodGet, "/", nil, nil)

	for range 2 {
		w := first.do(http.MethodGet, "/export", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := first.do(http.MethodGet, "/export", nil, asJSON())
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "too_many_requests")

	// Other pages stay reachable for a throttled visitor.
	assert.Equal(t, http.StatusOK, first.do(http.MethodGet, "/state", nil, asJSON()).Code)

	// A new cookie from the same address shares the bucket.
	sameAddr := app.client(t)
	assert.Equal(t, http.StatusTooManyRequests, sameAddr.do(http.MethodGet, "/export", nil, nil).Code)

	other := app.client(t)
	other.remote = "198.51.100.7:4321"
	assert.Equal(t, http.StatusOK, other.do(http.MethodGet, "/export", nil, nil).Code)
}

func TestExportRateLimitWithoutCookies(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, web.WithExportLimiter(newExportLimiter(t, 2)))

	served, limited := 0, 0
	for range 50 {
		w := httptest.NewRecorder()
		app.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/export", nil))
		switch w.Code {
		case http.StatusOK:
			served++
		case http.StatusTooManyRequests:
			limited++
		}
	}

	assert.Equal(t, 2, served)
	assert.Equal(t, 48, limited)
	assert.Equal(t, 2, app.sessions.Len(), "rejected exports create no session")
}

func TestBlob(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	c := app.client(t)
	reg := app.pipeline.Registry()

	u := reg.Create([]byte("<svg/>"), export.ContentTypeSVG)
	id := strings.TrimPrefix(u, "blob:")

	w := c.do(http.MethodGet, "/blob/"+id, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.ContentTypeSVG, w.Header().Get("Content-Type"))
	assert.Equal(t, "<svg/>", w.Body.String())

	reg.Revoke(u)
	w = c.do(http.MethodGet, "/blob/"+id, nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = c.do(http.MethodGet, "/blob/not-an-id", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStaticAssets(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	c := app.client(t)

	w := c.do(http.MethodGet, "/static/app.js", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `new WebSocket(`)

	w = c.do(http.MethodGet, "/static/app.css", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = c.do(http.MethodGet, "/static/", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 0, app.sessions.Len())
}

func TestHealth(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	c := app.client(t)

	w := c.do(http.MethodGet, "/live", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = c.do(http.MethodGet, "/ready", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, app.sessions.Len(), "probes do not create sessions")
}

func TestNotFoundAndMethod(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	c := app.client(t)

	w := c.do(http.MethodGet, "/missing", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = c.do(http.MethodGet, "/text", nil, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestBodyLimit(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, web.WithBodyLimit(128))
	w := app.client(t).do(http.MethodPost, "/text", url.Values{"text": {strings.Repeat("a", 512)}}, asJSON())
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestLivePreview(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	srv := httptest.NewServer(app.handler)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	httpClient := &http.Client{Jar: jar}

	resp, err := httpClient.Get(srv.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()

	base, err := url.Parse(srv.URL)
	require.NoError(t, err)
	header := http.Header{}
	for _, ck := range jar.Cookies(base) {
		header.Add("Cookie", ck.String())
	}

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	type message struct {
		Preview web.Preview   `json:"preview"`
		State   web.StateView `json:"state"`
	}
	read := func() message {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		var m message
		require.NoError(t, conn.ReadJSON(&m))
		return m
	}

	first := read()
	assert.True(t, first.Preview.Ready)
	assert.True(t, strings.HasPrefix(first.Preview.Markup, "<svg"))
	assert.Equal(t, "https://example.com", first.State.Text)

	form := url.Values{"text": {"live update"}}
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/text", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	resp, err = httpClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	next := read()
	assert.True(t, next.Preview.Ready)
	assert.NotEqual(t, first.Preview.Markup, next.Preview.Markup)
	assert.Equal(t, "live update", next.State.Text)
}

func TestLiveConnectionKeepsSession(t *testing.T) {
	t.Parallel()

	cookies, err := cookie.New([]string{testSecret})
	require.NoError(t, err)
	sessions := web.NewSessions(cookies, web.WithSessionTTL(time.Millisecond))
	srv := httptest.NewServer(web.New(sessions).Handler())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	resp, err := (&http.Client{Jar: jar}).Get(srv.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()

	base, err := url.Parse(srv.URL)
	require.NoError(t, err)
	header := http.Header{}
	for _, ck := range jar.Cookies(base) {
		header.Add("Cookie", ck.String())
	}

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", header)
	require.NoError(t, err)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err = conn.ReadMessage()
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, sessions.Sweep(), "open connection keeps the session")
	assert.Equal(t, 1, sessions.Len())

	conn.Close()
	assert.Eventually(t, func() bool {
		sessions.Sweep()
		return sessions.Len() == 0
	}, 5*time.Second, 10*time.Millisecond)
}
