package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Ferdinando4570/content-forge-magic/internal/config"
	"github.com/Ferdinando4570/content-forge-magic/internal/db"
	"github.com/Ferdinando4570/content-forge-magic/internal/models"
	"github.com/Ferdinando4570/content-forge-magic/internal/posts"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Server.TemplateDir = "../../web/templates"

	srv, err := New(database, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	return srv
}

func postForm(srv *Server, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

// registerAndLogin creates a fresh account and returns its session cookie.
func registerAndLogin(t *testing.T, srv *Server, email, username string) *http.Cookie {
	t.Helper()
	w := postForm(srv, "/register", url.Values{
		"email": {email}, "username": {username}, "password": {"secret"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)

	w = postForm(srv, "/login", url.Values{"email": {email}, "password": {"secret"}})
	require.Equal(t, http.StatusSeeOther, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	for _, c := range cookies {
		if c.Name == srv.CookieName {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestRegisterLogin(t *testing.T) {
	srv := newTestServer(t)
	cookie := registerAndLogin(t, srv, "a@b.com", "alice")
	assert.NotEmpty(t, cookie.Value)

	// duplicate email is rejected
	w := postForm(srv, "/register", url.Values{
		"email": {"a@b.com"}, "username": {"alice2"}, "password": {"secret"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// wrong password
	w = postForm(srv, "/login", url.Values{"email": {"a@b.com"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDashboardRequiresAuth(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestGenerateUnauthenticated(t *testing.T) {
	srv := newTestServer(t)
	w := postForm(srv, "/generate", url.Values{
		"tipo":        {"promoção"},
		"tom":         {"descontraído"},
		"produto":     {"Tênis X"},
		"data_limite": {"31/12/2024"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "PROMOÇÃO IMPERDÍVEL")
	assert.Contains(t, body, "Tênis X")
	assert.Contains(t, body, "31/12/2024")
	assert.Contains(t, body, "Faça login para salvar no histórico")

	// nothing was persisted
	posts, err := models.ListGeneratedPosts(context.Background(), srv.DB, 1)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestGenerateValidation(t *testing.T) {
	srv := newTestServer(t)

	w := postForm(srv, "/generate", url.Values{"tipo": {"promoção"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "selecione o tipo de post e o tom de voz")

	w = postForm(srv, "/generate", url.Values{"tipo": {"podcast"}, "tom": {"formal"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "inválido")
}

func TestGenerateSavesForUser(t *testing.T) {
	srv := newTestServer(t)
	cookie := registerAndLogin(t, srv, "a@b.com", "alice")

	w := postForm(srv, "/generate", url.Values{
		"tipo":   {"notícia"},
		"tom":    {"formal"},
		"evento": {"Lançamento da versão 2"},
		"link":   {"https://exemplo.com"},
	}, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "salvo no histórico")

	user, err := models.GetUserByEmail(srv.DB, "a@b.com")
	require.NoError(t, err)
	saved, err := models.ListGeneratedPosts(context.Background(), srv.DB, user.ID)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Contains(t, saved[0].Content, "Comunicado Oficial")
	assert.Contains(t, saved[0].Content, "Lançamento da versão 2")
	assert.Equal(t, "notícia", saved[0].Platform)
	assert.Equal(t, "Tipo: notícia, Tom: formal, Evento: Lançamento da versão 2, Link: https://exemplo.com", saved[0].Prompt)

	// dashboard shows it
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Lançamento da versão 2")
	assert.Contains(t, rec.Body.String(), "Tipo: notícia")
}

func TestRevise(t *testing.T) {
	srv := newTestServer(t)

	w := postForm(srv, "/revise", url.Values{
		"tipo":         {"evento"},
		"tom":          {"formal"},
		"texto_gerado": {"Convite para Evento"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "revisado e otimizado para melhor engajamento!")

	// revising nothing is a validation failure
	w = postForm(srv, "/revise", url.Values{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Gere um post primeiro")
}

func TestDeletePost(t *testing.T) {
	srv := newTestServer(t)
	cookie := registerAndLogin(t, srv, "a@b.com", "alice")

	w := postForm(srv, "/generate", url.Values{"tipo": {"evento"}, "tom": {"descontraído"}, "evento": {"Meetup"}}, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	user, err := models.GetUserByEmail(srv.DB, "a@b.com")
	require.NoError(t, err)
	saved, err := models.ListGeneratedPosts(context.Background(), srv.DB, user.ID)
	require.NoError(t, err)
	require.Len(t, saved, 1)

	w = postForm(srv, "/posts/delete", url.Values{"id": {saved[0].ID}}, cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))

	saved, err = models.ListGeneratedPosts(context.Background(), srv.DB, user.ID)
	require.NoError(t, err)
	assert.Empty(t, saved)
}

// failingStore rejects every operation, standing in for a broken backend.
type failingStore struct{}

func (failingStore) List(ctx context.Context, userID int64) ([]models.GeneratedPost, error) {
	return nil, errors.New("store down")
}

func (failingStore) Insert(ctx context.Context, userID int64, content, platform, prompt string) (string, error) {
	return "", errors.New("store down")
}

func (failingStore) Delete(ctx context.Context, id string, userID int64) error {
	return errors.New("store down")
}

func TestStoreFailureShowsFlash(t *testing.T) {
	srv := newTestServer(t)
	cookie := registerAndLogin(t, srv, "a@b.com", "alice")
	srv.store = failingStore{}

	w := postForm(srv, "/generate", url.Values{
		"tipo": {"promoção"}, "tom": {"formal"}, "produto": {"Tênis X"},
	}, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, posts.MsgSaveFailed, "generic message, not the raw error")
	assert.NotContains(t, body, "store down")
	assert.Contains(t, body, "Oferta Especial", "the generated text still renders")

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), posts.MsgLoadFailed)
}

func TestIndexCopyAndNoInlineScript(t *testing.T) {
	srv := newTestServer(t)
	w := postForm(srv, "/generate", url.Values{"tipo": {"notícia"}, "tom": {"descontraído"}})
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `data-copy-target="texto-gerado"`)
	assert.Contains(t, body, "/static/app.js")
	assert.NotContains(t, body, "onchange=", "inline handlers are blocked by the CSP")
}

func TestLogout(t *testing.T) {
	srv := newTestServer(t)
	cookie := registerAndLogin(t, srv, "a@b.com", "alice")

	// touch the synchronizer so there is session state to release
	w := postForm(srv, "/generate", url.Values{"tipo": {"evento"}, "tom": {"formal"}}, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	srv.mu.Lock()
	require.Len(t, srv.syncs, 1)
	srv.mu.Unlock()

	w = postForm(srv, "/logout", url.Values{}, cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)

	// session-scoped synchronizer state is discarded with the session
	srv.mu.Lock()
	assert.Empty(t, srv.syncs)
	assert.Empty(t, srv.notices)
	srv.mu.Unlock()

	// session is revoked: dashboard redirects to login again
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}
