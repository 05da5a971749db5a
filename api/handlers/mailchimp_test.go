package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statflow/listrelay/api/middleware"
	"github.com/statflow/listrelay/config"
	"github.com/statflow/listrelay/internal/logger"
	"github.com/statflow/listrelay/services"
)

func getLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{
		DevMode: true,
	})
	appLogger.InitLogger()
	return appLogger
}

func testConfig(collectURL string) *config.Config {
	return &config.Config{
		AppConfig: &config.AppConfig{
			// Sync mode keeps outbound-call assertions deterministic;
			// async dispatch has its own test below.
			ForwardSync: true,
		},
		GA4Config: &config.GA4Config{
			CollectURL:    collectURL,
			MeasurementID: "G-TEST123",
			APISecret:     "secret",
		},
		DedupConfig: &config.DedupConfig{WindowSeconds: 30},
		ForwarderConfig: &config.ForwarderConfig{
			MaxAttempts:      2,
			AttemptTimeoutMs: 500,
			BackoffBaseMs:    1,
			BackoffMaxMs:     2,
		},
		ExtractorConfig: &config.ExtractorConfig{NewsletterGroupLabel: "Newsletters"},
	}
}

func setupRouter(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svcs := services.InitServices(cfg, getLogger())

	r := gin.New()
	r.HandleMethodNotAllowed = true

	tokenMiddleware := middleware.TokenMiddleware(middleware.TokenConfig{
		QueryParam:  "token",
		SharedToken: cfg.AppConfig.WebhookToken,
	})

	h := NewMailchimpHandler(cfg, svcs, getLogger())
	webhooks := r.Group("/webhooks")
	webhooks.Use(middleware.RequestContextMiddleware("listrelay-test"))
	{
		webhooks.GET("/mailchimp", h.Ping())
		webhooks.OPTIONS("/mailchimp", h.Preflight())
		webhooks.POST("/mailchimp", tokenMiddleware, h.Receive())
	}
	return r
}

func newCollectServer(status int) (*httptest.Server, *int32) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(status)
	}))
	return srv, &calls
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestPing(t *testing.T) {
	srv, _ := newCollectServer(http.StatusNoContent)
	defer srv.Close()
	r := setupRouter(testConfig(srv.URL))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/webhooks/mailchimp", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestPreflight(t *testing.T) {
	srv, _ := newCollectServer(http.StatusNoContent)
	defer srv.Close()
	r := setupRouter(testConfig(srv.URL))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/webhooks/mailchimp", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "POST, GET, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newCollectServer(http.StatusNoContent)
	defer srv.Close()
	r := setupRouter(testConfig(srv.URL))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/webhooks/mailchimp", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestInvalidToken(t *testing.T) {
	srv, calls := newCollectServer(http.StatusNoContent)
	defer srv.Close()
	cfg := testConfig(srv.URL)
	cfg.AppConfig.WebhookToken = "s3cret"
	r := setupRouter(cfg)

	w := postJSON(r, "/webhooks/mailchimp?token=wrong", `{"type":"subscribe","data":{"email":"a@example.com"}}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))

	w = postJSON(r, "/webhooks/mailchimp?token=s3cret", `{"type":"subscribe","data":{"email":"a@example.com","list_id":"1"}}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestMissingCredentials(t *testing.T) {
	srv, calls := newCollectServer(http.StatusNoContent)
	defer srv.Close()
	cfg := testConfig(srv.URL)
	cfg.GA4Config.MeasurementID = ""
	r := setupRouter(cfg)

	w := postJSON(r, "/webhooks/mailchimp", `{"type":"subscribe","data":{"email":"a@example.com"}}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestNonSubscribeEventIgnored(t *testing.T) {
	srv, calls := newCollectServer(http.StatusNoContent)
	defer srv.Close()
	r := setupRouter(testConfig(srv.URL))

	// "unsubscribe" contains the substring "subscribe" but must not be
	// treated as a subscription.
	w := postJSON(r, "/webhooks/mailchimp", `{"type":"unsubscribe","data":{"email":"a@example.com"}}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ignored"`)
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestSubscribeWithoutEmail(t *testing.T) {
	srv, calls := newCollectServer(http.StatusNoContent)
	defer srv.Close()
	r := setupRouter(testConfig(srv.URL))

	w := postJSON(r, "/webhooks/mailchimp", `{"type":"subscribe","data":{"list_id":"42"}}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestSubscribeWithInvalidEmail(t *testing.T) {
	srv, calls := newCollectServer(http.StatusNoContent)
	defer srv.Close()
	r := setupRouter(testConfig(srv.URL))

	w := postJSON(r, "/webhooks/mailchimp", `{"type":"subscribe","data":{"email":"not-an-email"}}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestSubscribeEndToEnd(t *testing.T) {
	var query string
	var body string
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		query = r.URL.RawQuery
		buf, _ := io.ReadAll(r.Body)
		body = string(buf)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()
	r := setupRouter(testConfig(srv.URL))

	start := time.Now()
	w := postJSON(r, "/webhooks/mailchimp", `{"type":"subscribe","data":{"email":"A@Example.com","list_id":"42"}}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"received"`)
	assert.Less(t, time.Since(start), 2*time.Second)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Contains(t, query, "measurement_id=G-TEST123")
	assert.Contains(t, body, `"list_id":"42"`)
	// The identity is hashed, never the literal address
	assert.NotContains(t, body, "A@Example.com")
	assert.NotContains(t, body, "a@example.com")
}

func TestDuplicateSuppressedWithinWindow(t *testing.T) {
	srv, calls := newCollectServer(http.StatusNoContent)
	defer srv.Close()
	r := setupRouter(testConfig(srv.URL))

	first := postJSON(r, "/webhooks/mailchimp", `{"type":"subscribe","data":{"email":"dup@example.com","list_id":"1"}}`)
	second := postJSON(r, "/webhooks/mailchimp", `{"type":"subscribe","data":{"email":"Dup@Example.com","list_id":"1"}}`)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Contains(t, second.Body.String(), `"duplicate"`)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestFormEncodedSubscribe(t *testing.T) {
	srv, calls := newCollectServer(http.StatusNoContent)
	defer srv.Close()
	r := setupRouter(testConfig(srv.URL))

	form := "type=subscribe&data%5Bemail%5D=form%40example.com&data%5Blist_id%5D=abc123"
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/mailchimp", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"received"`)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestMalformedBodyStillAcknowledged(t *testing.T) {
	srv, calls := newCollectServer(http.StatusNoContent)
	defer srv.Close()
	r := setupRouter(testConfig(srv.URL))

	w := postJSON(r, "/webhooks/mailchimp", `{"type":`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ignored"`)
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestSyncDeliveryFailureReturnsBadGateway(t *testing.T) {
	srv, calls := newCollectServer(http.StatusInternalServerError)
	defer srv.Close()
	r := setupRouter(testConfig(srv.URL))

	w := postJSON(r, "/webhooks/mailchimp", `{"type":"subscribe","data":{"email":"a@example.com","list_id":"1"}}`)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	// MaxAttempts is 2 in the test config
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestFireAndForgetAcksBeforeDelivery(t *testing.T) {
	release := make(chan struct{})
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		<-release
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()
	cfg := testConfig(srv.URL)
	cfg.AppConfig.ForwardSync = false
	// Keep the single blocked attempt alive until the test releases it
	cfg.ForwarderConfig.AttemptTimeoutMs = 5000
	r := setupRouter(cfg)

	start := time.Now()
	w := postJSON(r, "/webhooks/mailchimp", `{"type":"subscribe","data":{"email":"async@example.com","list_id":"1"}}`)
	elapsed := time.Since(start)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"received"`)
	// The ack must not wait on the (blocked) collection endpoint
	assert.Less(t, elapsed, time.Second)

	close(release)
	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) == 1
	}, 2*time.Second, 10*time.Millisecond)
}
