package security

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newThrottle(limit int) (*Throttle, redismock.ClientMock) {
	db, mock := redismock.NewClientMock()
	t := NewThrottle(db, limit, time.Minute)
	t.Identify = func(*core.RequestEvent) string { return "ip:10.0.0.1" }
	return t, mock
}

func newEvent(userAgent string) *core.RequestEvent {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/movies", nil)
	req.Header.Set("User-Agent", userAgent)

	e := &core.RequestEvent{}
	e.Request = req
	e.Response = httptest.NewRecorder()
	return e
}

func apiStatus(t *testing.T, err error) int {
	t.Helper()
	var apiErr *router.ApiError
	require.True(t, errors.As(err, &apiErr), "expected api error, got %v", err)
	return apiErr.Status
}

func expectCount(mock redismock.ClientMock, count int64) {
	mock.ExpectTxPipeline()
	mock.ExpectSetNX("throttle:ip:10.0.0.1", 0, time.Minute).SetVal(count == 1)
	mock.ExpectIncr("throttle:ip:10.0.0.1").SetVal(count)
	mock.ExpectTxPipelineExec()
}

func TestThrottle_FirstRequestSetsWindow(t *testing.T) {
	th, mock := newThrottle(2)
	expectCount(mock, 1)

	assert.NoError(t, th.Middleware().Func(newEvent("Mozilla/5.0")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestThrottle_OverLimit(t *testing.T) {
	th, mock := newThrottle(2)
	expectCount(mock, 3)

	err := th.Middleware().Func(newEvent("Mozilla/5.0"))
	assert.Equal(t, http.StatusTooManyRequests, apiStatus(t, err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestThrottle_RedisDownLetsRequestThrough(t *testing.T) {
	th, mock := newThrottle(2)
	mock.ExpectTxPipeline()
	mock.ExpectSetNX("throttle:ip:10.0.0.1", 0, time.Minute).SetErr(errors.New("connection refused"))

	assert.NoError(t, th.Middleware().Func(newEvent("Mozilla/5.0")))
}

func TestThrottle_RejectsBots(t *testing.T) {
	th, mock := newThrottle(2)

	err := th.Middleware().Func(newEvent("Googlebot/2.1"))
	assert.Equal(t, http.StatusForbidden, apiStatus(t, err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsSuspiciousUserAgent(t *testing.T) {
	assert.True(t, IsSuspiciousUserAgent("Mozilla/5.0 (compatible; Bingbot/2.0)"))
	assert.True(t, IsSuspiciousUserAgent("SiteCrawler"))
	assert.False(t, IsSuspiciousUserAgent("Mozilla/5.0 (iPhone; CPU iPhone OS 17_0)"))
	assert.False(t, IsSuspiciousUserAgent(""))
}
