package server

import (
	"database/sql"
	"html/template"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Ferdinando4570/content-forge-magic/internal/config"
	"github.com/Ferdinando4570/content-forge-magic/internal/models"
	"github.com/Ferdinando4570/content-forge-magic/internal/posts"
)

type Server struct {
	DB         *sql.DB
	CookieName string

	tmpl         map[string]*template.Template
	log          *zap.Logger
	store        posts.Store
	sessionTTL   time.Duration
	storeTimeout time.Duration
	cookieSecure bool
	staticDir    string

	mu      sync.Mutex
	syncs   map[int64]*posts.Synchronizer
	notices map[int64]string
}

func New(db *sql.DB, cfg *config.Config, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	templates := map[string]*template.Template{}
	layout := filepath.Join(cfg.Server.TemplateDir, "layout.html")
	pages, err := filepath.Glob(filepath.Join(cfg.Server.TemplateDir, "*.html"))
	if err != nil {
		return nil, err
	}
	for _, page := range pages {
		if filepath.Base(page) == "layout.html" {
			continue
		}
		t, err := template.ParseFiles(layout, page)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(filepath.Base(page), ".html")
		templates[name] = t
	}
	return &Server{
		DB:           db,
		CookieName:   "session_id",
		tmpl:         templates,
		log:          log,
		store:        &posts.DBStore{DB: db},
		sessionTTL:   cfg.Session.Expiration,
		storeTimeout: cfg.Store.Timeout,
		cookieSecure: cfg.Server.CookieSecure,
		staticDir:    cfg.Server.StaticDir,
		syncs:        map[int64]*posts.Synchronizer{},
		notices:      map[int64]string{},
	}, nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLogger)
	r.Use(secureHeaders)

	r.Get("/", s.handleIndex)
	r.Post("/generate", s.handleGenerate)
	r.Post("/revise", s.handleRevise)
	r.Get("/dashboard", s.requireAuth(s.handleDashboard))
	r.Post("/posts/delete", s.requireAuth(s.handleDeletePost))
	r.Get("/register", s.handleRegisterForm)
	r.Post("/register", s.handleRegister)
	r.Get("/login", s.handleLoginForm)
	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(s.staticDir))))
	return r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.routes().ServeHTTP(w, r)
}

// sync returns the synchronizer bound to user's session, or an inert one
// when no user is signed in. Failed operations leave their user-facing
// message in the notice box; render drains it into the page flash.
func (s *Server) sync(user *models.User) *posts.Synchronizer {
	if user == nil {
		return posts.NewSynchronizer(s.store, 0, s.storeTimeout, s.log, nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if sy, ok := s.syncs[user.ID]; ok {
		return sy
	}
	userID := user.ID
	notify := posts.NotifierFunc(func(msg string) {
		s.mu.Lock()
		s.notices[userID] = msg
		s.mu.Unlock()
	})
	sy := posts.NewSynchronizer(s.store, userID, s.storeTimeout, s.log, notify)
	s.syncs[userID] = sy
	return sy
}

// releaseSync discards the session-scoped synchronizer and any pending
// notice for userID. Called on logout so the maps track live sessions
// only.
func (s *Server) releaseSync(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.syncs, userID)
	delete(s.notices, userID)
}

func (s *Server) popNotice(user *models.User) string {
	if user == nil {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := s.notices[user.ID]
	delete(s.notices, user.ID)
	return msg
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	t, ok := s.tmpl[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data["Flash"]; !ok {
		data["Flash"] = s.popFlash(w, r)
	}
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		s.log.Error("render failed", zap.String("template", name), zap.Error(err))
	}
}

// middleware
func (s *Server) requireAuth(next func(http.ResponseWriter, *http.Request, *models.User)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := s.currentUser(r)
		if user == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r, user)
	}
}

func (s *Server) currentUser(r *http.Request) *models.User {
	cookie, err := r.Cookie(s.CookieName)
	if err != nil {
		return nil
	}
	sess, err := models.GetSession(s.DB, cookie.Value)
	if err != nil || sess.RevokedAt != nil || sess.ExpiresAt.Before(time.Now()) {
		return nil
	}
	user, err := models.GetUserByID(s.DB, sess.UserID)
	if err != nil {
		return nil
	}
	return user
}

func (s *Server) startSession(w http.ResponseWriter, userID int64) error {
	sid := uuid.NewString()
	expires := time.Now().Add(s.sessionTTL)
	if err := models.CreateSession(s.DB, userID, sid, expires); err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.CookieName,
		Value:    sid,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.cookieSecure,
	})
	return nil
}
