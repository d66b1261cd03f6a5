package systembundle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bkabbarah/coachkit/app/core"
	"github.com/bkabbarah/coachkit/app/livefeed"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/jinzhu/gorm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodPassword = "Sup3r-secret"

type fixture struct {
	ormDB    *gorm.DB
	sessions *core.SessionCache
	hub      *livefeed.Hub
	server   *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ormDB, err := core.OpenSQLite(filepath.Join(t.TempDir(), "coachkit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { ormDB.Close() })
	require.NoError(t, Migrate(ormDB))

	f := &fixture{
		ormDB:    ormDB,
		sessions: core.NewSessionCache(),
		hub:      livefeed.NewHub(nil),
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go f.hub.Run(ctx)

	bundle := NewSystemBundle(core.Controller{Sessions: f.sessions}, ControllerOptions{
		ORM: ormDB,
		Hub: f.hub,
	})
	router := mux.NewRouter()
	s := router.PathPrefix("/api/v1").Subrouter()
	for _, route := range bundle.GetRoutes() {
		s.HandleFunc(route.Path, route.Handler).Methods(route.Method)
	}
	f.server = httptest.NewServer(router)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fixture) call(t *testing.T, method, path, token, body string) (*http.Response, core.ResponseData) {
	t.Helper()
	req, err := http.NewRequest(method, f.server.URL+"/api/v1"+path, strings.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data := core.ResponseData{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&data))
	return resp, data
}

func tokenOf(t *testing.T, data core.ResponseData) string {
	t.Helper()
	coach, ok := data.Data.(map[string]interface{})
	require.True(t, ok, "data is %T", data.Data)
	token, _ := coach["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func register(t *testing.T, f *fixture, email string) string {
	t.Helper()
	resp, data := f.call(t, http.MethodPost, "/system/register", "",
		`{"name":"Coach Carter","email":"`+email+`","password":"`+goodPassword+`"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, data.Detail)
	return tokenOf(t, data)
}

func TestRegisterLoginLogout(t *testing.T) {
	f := newFixture(t)
	register(t, f, "Carter@Example.com")

	resp, data := f.call(t, http.MethodPost, "/system/register", "",
		`{"name":"Other","email":"carter@example.com","password":"`+goodPassword+`"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, data.Detail, "already registered")

	resp, _ = f.call(t, http.MethodPost, "/system/login", "", `{"email":"carter@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, data = f.call(t, http.MethodPost, "/system/login", "", `{"email":" CARTER@example.com ","password":"`+goodPassword+`"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, data.Detail)
	token := tokenOf(t, data)
	assert.NotContains(t, data.Data, "password")

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == core.SessionCookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, token, cookie.Value)
	assert.True(t, cookie.HttpOnly)

	resp, data = f.call(t, http.MethodGet, "/system/me", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "carter@example.com", data.Data.(map[string]interface{})["email"])

	resp, _ = f.call(t, http.MethodPost, "/system/logout", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = f.call(t, http.MethodGet, "/system/me", token, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	count := 0
	require.NoError(t, f.ormDB.Unscoped().Model(&CoachSession{}).Where("session_token = ?", token).Count(&count).Error)
	assert.Zero(t, count)
}

func TestLockedCoachCannotLogin(t *testing.T) {
	f := newFixture(t)
	register(t, f, "carter@example.com")
	require.NoError(t, f.ormDB.Model(&core.Coach{}).Where("email = ?", "carter@example.com").Update("is_active", false).Error)

	resp, data := f.call(t, http.MethodPost, "/system/login", "", `{"email":"carter@example.com","password":"`+goodPassword+`"}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, core.StatusForbidden, data.Status)
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	f := newFixture(t)
	resp, data := f.call(t, http.MethodPost, "/system/register", "", `{"name":"A","email":"a@example.com","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, data.Detail, "password")
}

func TestRestoreSessions(t *testing.T) {
	f := newFixture(t)
	token := register(t, f, "carter@example.com")

	coach := core.Coach{}
	require.NoError(t, f.ormDB.Where("email = ?", "carter@example.com").First(&coach).Error)
	expired := CoachSession{
		CoachId:      coach.ID,
		SessionToken: "expired-token",
		LoginTime:    core.NewNullTime(time.Now().AddDate(0, 0, -10).UTC()),
		ExpiresAt:    core.NewNullTime(time.Now().AddDate(0, 0, -3).UTC()),
	}
	require.NoError(t, f.ormDB.Set("gorm:save_associations", false).Create(&expired).Error)

	cache := core.NewSessionCache()
	restored, err := RestoreSessions(f.ormDB, cache, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, restored)
	assert.Equal(t, 1, cache.Len())

	got, ok := cache.Get(token)
	require.True(t, ok)
	assert.Equal(t, coach.ID, got.ID)
	assert.Empty(t, got.Password)

	_, ok = cache.Get("expired-token")
	assert.False(t, ok)
	count := 0
	require.NoError(t, f.ormDB.Unscoped().Model(&CoachSession{}).Count(&count).Error)
	assert.Equal(t, 1, count)
}

func TestLiveFeedTicket(t *testing.T) {
	f := newFixture(t)
	token := register(t, f, "carter@example.com")
	coach, _ := f.sessions.Get(token)

	resp, _ := f.call(t, http.MethodGet, "/ws/ticket", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, data := f.call(t, http.MethodGet, "/ws/ticket", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ticket := data.Data.(map[string]interface{})["ticket"].(string)

	wsURL := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/api/v1/ws/"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL+ticket, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return f.hub.Connections(coach.ID) == 1 }, 2*time.Second, 10*time.Millisecond)

	f.hub.Publish(coach.ID, livefeed.TypeClient, livefeed.ActionAdd, map[string]string{"name": "Alice"})
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	msg := map[string]interface{}{}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, livefeed.TypeClient, msg["message_type"])

	_, resp, err = websocket.DefaultDialer.Dial(wsURL+ticket, nil)
	require.Error(t, err, "tickets are single use")
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
