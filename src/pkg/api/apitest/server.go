// Package apitest provides an in-memory blog list backend for tests.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"bloglist/local-app/src/pkg/model"
)

type user struct {
	id           string
	username     string
	name         string
	passwordHash []byte
}

type blog struct {
	model.Blog
	creatorID string
}

// Server mimics the blog list backend: login, list, create, update, delete.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	users    map[string]*user // by username
	tokens   map[string]*user
	blogs    map[string]*blog
	order    []string
	requests []string
}

// NewServer starts a backend. Call Close when done.
func NewServer() *Server {
	s := &Server{
		users:  make(map[string]*user),
		tokens: make(map[string]*user),
		blogs:  make(map[string]*blog),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("GET /api/blogs", s.handleList)
	mux.HandleFunc("POST /api/blogs", s.handleCreate)
	mux.HandleFunc("PUT /api/blogs/{id}", s.handleUpdate)
	mux.HandleFunc("DELETE /api/blogs/{id}", s.handleDelete)

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		s.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	return s
}

// AddUser registers a user and returns its id.
func (s *Server) AddUser(username, name, password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	u := &user{id: uuid.NewString(), username: username, name: name, passwordHash: hash}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[username] = u
	return u.id
}

// AddBlog stores a blog created by the named user and returns its id.
func (s *Server) AddBlog(creator string, info model.BlogInfo, likes int) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.users[creator]
	b := &blog{Blog: model.Blog{
		ID:     uuid.NewString(),
		Title:  info.Title,
		Author: info.Author,
		URL:    info.URL,
		Likes:  likes,
	}}
	if u != nil {
		b.creatorID = u.id
	}
	s.blogs[b.ID] = b
	s.order = append(s.order, b.ID)
	return b.ID
}

// Blog returns a copy of the stored blog.
func (s *Server) Blog(id string) (model.Blog, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blogs[id]
	if !ok {
		return model.Blog{}, false
	}
	return *s.populate(b), true
}

// BlogCount returns the number of stored blogs.
func (s *Server) BlogCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blogs)
}

// Requests returns "METHOD /path" for every request received so far.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds model.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[creds.Username]
	if !ok || bcrypt.CompareHashAndPassword(u.passwordHash, []byte(creds.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	token := uuid.NewString()
	s.tokens[token] = u
	writeJSON(w, http.StatusOK, model.User{Name: u.name, Username: u.username, Token: token})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blogs := make([]*model.Blog, 0, len(s.order))
	for _, id := range s.order {
		blogs = append(blogs, s.populate(s.blogs[id]))
	}
	writeJSON(w, http.StatusOK, blogs)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.authenticate(r)
	if u == nil {
		writeError(w, http.StatusUnauthorized, "token missing or invalid")
		return
	}

	var info model.BlogInfo
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	if info.Title == "" || info.URL == "" {
		writeError(w, http.StatusBadRequest, "title and url are required")
		return
	}

	b := &blog{Blog: model.Blog{ID: uuid.NewString(), Title: info.Title, Author: info.Author, URL: info.URL}, creatorID: u.id}
	s.blogs[b.ID] = b
	s.order = append(s.order, b.ID)
	writeJSON(w, http.StatusCreated, s.populate(b))
}

// handleUpdate answers with the creator as a bare id, like the real backend.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.authenticate(r) == nil {
		writeError(w, http.StatusUnauthorized, "token missing or invalid")
		return
	}

	b, ok := s.blogs[r.PathValue("id")]
	if !ok {
		writeError(w, http.StatusNotFound, "blog not found")
		return
	}

	var patch model.BlogPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	if patch.Title != nil {
		b.Title = *patch.Title
	}
	if patch.Author != nil {
		b.Author = *patch.Author
	}
	if patch.URL != nil {
		b.URL = *patch.URL
	}
	if patch.Likes != nil {
		b.Likes = *patch.Likes
	}

	writeJSON(w, http.StatusOK, struct {
		model.Blog
		User string `json:"user,omitempty"`
	}{Blog: b.Blog, User: b.creatorID})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.authenticate(r)
	if u == nil {
		writeError(w, http.StatusUnauthorized, "token missing or invalid")
		return
	}

	id := r.PathValue("id")
	b, ok := s.blogs[id]
	if !ok {
		writeError(w, http.StatusNotFound, "blog not found")
		return
	}
	if b.creatorID != u.id {
		writeError(w, http.StatusForbidden, "only the creator can delete a blog")
		return
	}

	delete(s.blogs, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// authenticate must be called with s.mu held.
func (s *Server) authenticate(r *http.Request) *user {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return nil
	}
	return s.tokens[header[len("bearer "):]]
}

// populate must be called with s.mu held.
func (s *Server) populate(b *blog) *model.Blog {
	out := b.Blog
	for _, u := range s.users {
		if u.id == b.creatorID {
			out.User = &model.BlogCreator{ID: u.id, Username: u.username, Name: u.name}
			break
		}
	}
	return &out
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
