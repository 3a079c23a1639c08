package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mbolis/survey-desk/auth"
	"github.com/mbolis/survey-desk/config"
	"github.com/mbolis/survey-desk/log"
	"github.com/mbolis/survey-desk/model"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTokens() *auth.Tokens {
	return auth.NewTokens(config.Config{
		AccessSecret:  "a",
		RefreshSecret: "r",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})
}

func echoPrincipal(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFrom(r.Context())
	w.Write([]byte(p.UserID + "/" + string(p.Role)))
}

func request(t *testing.T, h http.Handler, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/x", nil)
	if cookie != nil {
		r.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestAuthenticate(t *testing.T) {
	tokens := testTokens()
	h := Authenticate(tokens)(http.HandlerFunc(echoPrincipal))

	w := request(t, h, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = request(t, h, &http.Cookie{Name: auth.AccessCookie, Value: "garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	refresh, err := tokens.IssueRefresh(auth.Principal{UserID: "u1", Role: model.RoleAdmin})
	require.NoError(t, err)
	w = request(t, h, &http.Cookie{Name: auth.AccessCookie, Value: refresh})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	access, err := tokens.IssueAccess(auth.Principal{UserID: "u1", Role: model.RoleAdmin})
	require.NoError(t, err)
	w = request(t, h, &http.Cookie{Name: auth.AccessCookie, Value: access})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1/admin", w.Body.String())
}

func TestRequireRole(t *testing.T) {
	tokens := testTokens()
	h := Authenticate(tokens)(RequireRole(model.RoleSuperAdmin)(http.HandlerFunc(echoPrincipal)))

	admin, err := tokens.IssueAccess(auth.Principal{UserID: "u1", Role: model.RoleAdmin})
	require.NoError(t, err)
	w := request(t, h, &http.Cookie{Name: auth.AccessCookie, Value: admin})
	assert.Equal(t, http.StatusForbidden, w.Code)

	super, err := tokens.IssueAccess(auth.Principal{UserID: "u2", Role: model.RoleSuperAdmin})
	require.NoError(t, err)
	w = request(t, h, &http.Cookie{Name: auth.AccessCookie, Value: super})
	assert.Equal(t, http.StatusOK, w.Code)

	w = request(t, RequireRole(model.RoleAdmin)(http.HandlerFunc(echoPrincipal)), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestLog(t *testing.T) {
	hook := test.NewLocal(log.Logger)
	defer hook.Reset()

	tokens := testTokens()
	access, err := tokens.IssueAccess(auth.Principal{UserID: "u1", Role: model.RoleAdmin})
	require.NoError(t, err)

	h := RequestLog(Authenticate(tokens)(http.HandlerFunc(echoPrincipal)))

	request(t, h, &http.Cookie{Name: auth.AccessCookie, Value: access})
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, http.StatusOK, entry.Data["status"])
	assert.Equal(t, "u1", entry.Data["userId"])

	request(t, h, nil)
	entry = hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, http.StatusUnauthorized, entry.Data["status"])
	assert.NotContains(t, entry.Data, "userId")
}
