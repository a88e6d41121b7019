package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamsterrace/raceboard/internal/api/apierr"
	"github.com/hamsterrace/raceboard/internal/api/response"
	"github.com/hamsterrace/raceboard/internal/factory"
)

// testServer drives the fully wired router with a controllable clock
type testServer struct {
	app *factory.TestApp
}

func newTestServer(t *testing.T, cfg factory.Config) *testServer {
	t.Helper()

	app := factory.NewTestApp(cfg)
	t.Cleanup(func() { _ = app.Close() })

	return &testServer{app: app}
}

// client carries one browser's session cookie
type client struct {
	ts     *testServer
	cookie *http.Cookie
	bearer string
}

func (ts *testServer) newClient() *client {
	return &client{ts: ts}
}

func (c *client) request(method, path string, body any) *httptest.ResponseRecorder {
	var reqBody io.Reader = http.NoBody
	switch b := body.(type) {
	case nil:
	case string:
		reqBody = strings.NewReader(b)
	default:
		raw, _ := json.Marshal(b)
		reqBody = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}

	rr := httptest.NewRecorder()
	c.ts.app.Router.ServeHTTP(rr, req)

	for _, ck := range rr.Result().Cookies() {
		if ck.Name == factory.DefaultCookieName {
			if ck.MaxAge < 0 {
				c.cookie = nil
			} else {
				c.cookie = ck
			}
		}
	}
	return rr
}

func (c *client) createSession(t *testing.T) response.Session {
	t.Helper()
	rr := c.request(http.MethodPost, "/session", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	return decode[response.Session](t, rr)
}

func (c *client) startRace(t *testing.T) string {
	t.Helper()
	rr := c.request(http.MethodPost, "/race", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	started := decode[response.RaceStarted](t, rr)
	require.NotEmpty(t, started.RaceID)
	return started.RaceID
}

func finishBody(raceID string, raceTime any, raceMap string) map[string]any {
	return map[string]any{
		"raceId":    raceID,
		"raceTime":  raceTime,
		"raceMap":   raceMap,
		"raceColor": "golden",
	}
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t, factory.Config{})

	rr := ts.newClient().request(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestSessionLifecycle(t *testing.T) {
	ts := newTestServer(t, factory.Config{})
	c := ts.newClient()

	rr := c.request(http.MethodGet, "/session", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	created := c.createSession(t)
	assert.Equal(t, apierr.ResultOK, created.Result)
	assert.Equal(t, "session created", created.Message)
	assert.Equal(t, "Guest_mock", created.UserName)
	require.NotNil(t, c.cookie)
	assert.True(t, c.cookie.HttpOnly)

	// Creating again with a live cookie returns the same identity
	again := c.createSession(t)
	assert.Equal(t, "session exists", again.Message)
	assert.Equal(t, created.UserID, again.UserID)

	rr = c.request(http.MethodGet, "/session", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, created.UserID, decode[response.Session](t, rr).UserID)

	rr = c.request(http.MethodDelete, "/session", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Nil(t, c.cookie)

	rr = c.request(http.MethodGet, "/session", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSessionViaBearerToken(t *testing.T) {
	ts := newTestServer(t, factory.Config{})
	c := ts.newClient()
	c.createSession(t)

	bearer := ts.newClient()
	bearer.bearer = c.cookie.Value

	rr := bearer.request(http.MethodGet, "/session", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestSessionExpires(t *testing.T) {
	ts := newTestServer(t, factory.Config{SessionTTL: time.Hour})
	c := ts.newClient()
	c.createSession(t)

	ts.app.MockClock.Advance(time.Hour)

	rr := c.request(http.MethodGet, "/session", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSetName(t *testing.T) {
	ts := newTestServer(t, factory.Config{})
	c := ts.newClient()

	rr := c.request(http.MethodPost, "/name", map[string]string{"userName": "Speedy"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	c.createSession(t)

	rr = c.request(http.MethodPost, "/name", map[string]string{"userName": "Speedy"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "name is set", decode[response.Envelope](t, rr).Message)

	rr = c.request(http.MethodGet, "/session", nil)
	assert.Equal(t, "Speedy", decode[response.Session](t, rr).UserName)
}

func TestSetNameRejectsProfanity(t *testing.T) {
	ts := newTestServer(t, factory.Config{})
	c := ts.newClient()
	c.createSession(t)

	rr := c.request(http.MethodPost, "/name", map[string]string{"userName": "fuckface"})
	assert.Equal(t, http.StatusNotAcceptable, rr.Code)
	assert.Equal(t, apierr.ResultFail, decode[apierr.ErrorResponse](t, rr).Result)

	rr = c.request(http.MethodGet, "/session", nil)
	assert.Equal(t, "Guest_mock", decode[response.Session](t, rr).UserName)
}

func TestSetNameMissing(t *testing.T) {
	ts := newTestServer(t, factory.Config{})
	c := ts.newClient()
	c.createSession(t)

	rr := c.request(http.MethodPost, "/name", map[string]string{"userName": "   "})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "required parameter (userName) missing", decode[apierr.ErrorResponse](t, rr).Message)
}

func TestRaceRequiresSession(t *testing.T) {
	ts := newTestServer(t, factory.Config{})
	c := ts.newClient()

	for _, method := range []string{http.MethodPost, http.MethodPatch, http.MethodDelete} {
		rr := c.request(method, "/race", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, method)
	}
}

func TestFinishWithinTolerance(t *testing.T) {
	ts := newTestServer(t, factory.Config{})
	c := ts.newClient()
	c.createSession(t)
	raceID := c.startRace(t)

	ts.app.MockClock.Advance(50 * time.Millisecond)

	rr := c.request(http.MethodPatch, "/race", finishBody(raceID, 50, "StageI"))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "race updated", decode[response.Envelope](t, rr).Message)

	rr = c.request(http.MethodGet, "/race?map=StageI", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	board := decode[response.Leaderboard](t, rr)
	require.Len(t, board.Results, 1)
	assert.Equal(t, int64(50), board.Results[0].Time)
	assert.Equal(t, "Guest_mock", board.Results[0].Name)
	assert.Equal(t, "golden", board.Results[0].Color)

	// A second finish for the same race is refused
	rr = c.request(http.MethodPatch, "/race", finishBody(raceID, 50, "StageI"))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestFinishTimingMismatch(t *testing.T) {
	ts := newTestServer(t, factory.Config{})
	c := ts.newClient()
	c.createSession(t)
	raceID := c.startRace(t)

	ts.app.MockClock.Advance(50 * time.Millisecond)

	rr := c.request(http.MethodPatch, "/race", finishBody(raceID, 2000, "StageI"))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	body := decode[apierr.ErrorResponse](t, rr)
	assert.Equal(t, "raceTime mismatch", body.Message)
	require.NotNil(t, body.ServerTime)
	require.NotNil(t, body.ClientTime)
	require.NotNil(t, body.Difference)
	assert.Equal(t, int64(50), *body.ServerTime)
	assert.Equal(t, int64(2000), *body.ClientTime)
	assert.Equal(t, int64(1950), *body.Difference)

	rr = c.request(http.MethodGet, "/race?map=StageI", nil)
	assert.Empty(t, decode[response.Leaderboard](t, rr).Results)

	// The race is still running and can be finished with a truthful time
	rr = c.request(http.MethodPatch, "/race", finishBody(raceID, 60, "StageI"))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestFinishRejectsOutOfRangeTimes(t *testing.T) {
	ts := newTestServer(t, factory.Config{})
	c := ts.newClient()
	c.createSession(t)
	raceID := c.startRace(t)

	ts.app.MockClock.Advance(30 * time.Second)

	for _, raceTime := range []any{
		"-9223372036854745808",
		"-9223372036854775808",
		"9223372036854775807",
		-500,
	} {
		rr := c.request(http.MethodPatch, "/race", finishBody(raceID, raceTime, "StageI"))
		assert.Equal(t, http.StatusBadRequest, rr.Code, "raceTime %v: %s", raceTime, rr.Body.String())
	}

	rr := c.request(http.MethodGet, "/race?map=StageI&sortBy=time", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[response.Leaderboard](t, rr).Results)

	rr = c.request(http.MethodPatch, "/race", finishBody(raceID, 30000, "StageI"))
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func TestFinishMissingParameters(t *testing.T) {
	ts := newTestServer(t, factory.Config{})
	c := ts.newClient()
	c.createSession(t)

	rr := c.request(http.MethodPatch, "/race", map[string]any{})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t,
		"required parameter (raceId,raceTime,raceMap,raceColor) missing",
		decode[apierr.ErrorResponse](t, rr).Message,
	)

	rr = c.request(http.MethodPatch, "/race", map[string]any{"raceId": "x", "raceTime": 0, "raceColor": "white"})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "required parameter (raceTime,raceMap) missing", decode[apierr.ErrorResponse](t, rr).Message)
}

func TestFinishInvalidBody(t *testing.T) {
	ts := newTestServer(t, factory.Config{})
	c := ts.newClient()
	c.createSession(t)
	raceID := c.startRace(t)

	rr := c.request(http.MethodPatch, "/race", finishBody(raceID, "fast", "StageI"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.MessageInvalidRequest, decode[apierr.ErrorResponse](t, rr).Message)

	rr = c.request(http.MethodPatch, "/race", `{"raceId":`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestFinishAcceptsNumericString(t *testing.T) {
	ts := newTestServer(t, factory.Config{})
	c := ts.newClient()
	c.createSession(t)
	raceID := c.startRace(t)

	ts.app.MockClock.Advance(1500 * time.Millisecond)

	rr := c.request(http.MethodPatch, "/race", finishBody(raceID, "1500", "StageII"))
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
}

func TestRestartReplacesRace(t *testing.T) {
	ts := newTestServer(t, factory.Config{})
	c := ts.newClient()
	c.createSession(t)

	first := c.startRace(t)
	second := c.startRace(t)
	assert.NotEqual(t, first, second)

	rr := c.request(http.MethodPatch, "/race", finishBody(first, 10, "StageI"))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCancelRace(t *testing.T) {
	ts := newTestServer(t, factory.Config{})
	c := ts.newClient()
	c.createSession(t)
	raceID := c.startRace(t)

	rr := c.request(http.MethodDelete, "/race", map[string]string{"raceId": "unrelated"})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = c.request(http.MethodDelete, "/race", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = c.request(http.MethodDelete, "/race", map[string]string{"raceId": raceID})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "race interrupted", decode[response.Envelope](t, rr).Message)

	ts.app.MockClock.Advance(100 * time.Millisecond)
	rr = c.request(http.MethodPatch, "/race", finishBody(raceID, 100, "StageI"))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRacesAreIsolatedPerIdentity(t *testing.T) {
	ts := newTestServer(t, factory.Config{})
	alice := ts.newClient()
	alice.createSession(t)
	bob := ts.newClient()
	bob.createSession(t)

	aliceRace := alice.startRace(t)
	bob.startRace(t)

	rr := bob.request(http.MethodPatch, "/race", finishBody(aliceRace, 10, "StageI"))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	ts.app.MockClock.Advance(10 * time.Millisecond)
	rr = alice.request(http.MethodPatch, "/race", finishBody(aliceRace, 10, "StageI"))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestLeaderboardParams(t *testing.T) {
	ts := newTestServer(t, factory.Config{})
	c := ts.newClient()

	rr := c.request(http.MethodGet, "/race", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	board := decode[response.Leaderboard](t, rr)
	assert.Equal(t, apierr.ResultOK, board.Result)
	assert.Equal(t, response.LeaderboardParams{Sort: "ASC", Offset: 0, Limit: 10, SortBy: "id"}, board.Params)
	assert.NotNil(t, board.Results)

	rr = c.request(http.MethodGet, "/race?sort=desc&sortBy=name%3BDROP&offset=-3&limit=abc&map=StageIV", nil)
	board = decode[response.Leaderboard](t, rr)
	assert.Equal(t, response.LeaderboardParams{
		Sort: "DESC", Map: "StageIV", Offset: 0, Limit: 10, SortBy: "id",
	}, board.Params)
}

func TestLeaderboardOrderingAndPagination(t *testing.T) {
	ts := newTestServer(t, factory.Config{})
	c := ts.newClient()
	c.createSession(t)

	times := []int64{300, 100, 500, 200, 400}
	for _, ms := range times {
		raceID := c.startRace(t)
		ts.app.MockClock.Advance(time.Duration(ms) * time.Millisecond)
		rr := c.request(http.MethodPatch, "/race", finishBody(raceID, ms, "StageIII"))
		require.Equal(t, http.StatusOK, rr.Code)
	}

	rr := c.request(http.MethodGet, "/race?map=StageIII&sortBy=time&sort=ASC", nil)
	all := decode[response.Leaderboard](t, rr).Results
	require.Len(t, all, 5)
	for i, want := range []int64{100, 200, 300, 400, 500} {
		assert.Equal(t, want, all[i].Time)
	}

	rr = c.request(http.MethodGet, "/race?map=StageIII&sortBy=time&sort=ASC&offset=1&limit=2", nil)
	page := decode[response.Leaderboard](t, rr).Results
	assert.Equal(t, all[1:3], page)

	rr = c.request(http.MethodGet, "/race?map=StageIII&sortBy=time&sort=ASC&offset=1&limit=9223372036854775807", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, all[1:], decode[response.Leaderboard](t, rr).Results)

	rr = c.request(http.MethodGet, "/race?map=StageIII&limit=0", nil)
	assert.Empty(t, decode[response.Leaderboard](t, rr).Results)

	rr = c.request(http.MethodGet, "/race?map=StageII", nil)
	assert.Empty(t, decode[response.Leaderboard](t, rr).Results)
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, factory.Config{RateLimit: 1, RateBurst: 1})
	c := ts.newClient()
	c.createSession(t)

	c.startRace(t)
	rr := c.request(http.MethodPost, "/race", nil)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))

	// Reads are not limited
	rr = c.request(http.MethodGet, "/race", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, factory.Config{})
	c := ts.newClient()
	c.createSession(t)
	c.startRace(t)

	rr := c.request(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "raceboard_races_started_total 1")
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, factory.Config{CORSOrigins: []string{"http://localhost:3000"}})

	req := httptest.NewRequest(http.MethodOptions, "/race", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rr := httptest.NewRecorder()
	ts.app.Router.ServeHTTP(rr, req)

	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
}
