// Package apitest is an in-memory fake of the contacts API. It speaks the same
// envelope contract as the real service and backs both tests and mocks/contacts-api.
package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"rhystmorgan/phonebook/internal/api"
)

const maxUploadBytes = 10 << 20

type image struct {
	contentType string
	data        []byte
}

type Server struct {
	apiKey string
	logger *slog.Logger

	mu       sync.Mutex
	users    map[string]api.UserDTO
	order    []string
	images   map[string]image
	failures map[string][]string
	calls    map[string]int
	latency  time.Duration
}

func New(apiKey string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{
		apiKey:   apiKey,
		logger:   logger,
		users:    make(map[string]api.UserDTO),
		images:   make(map[string]image),
		failures: make(map[string][]string),
		calls:    make(map[string]int),
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", s.handleHealth)
	r.Get("/images/{name}", s.handleImage)

	r.Route("/api/User", func(r chi.Router) {
		r.Use(s.requireAPIKey)
		r.Get("/GetAll", s.handleList)
		r.Post("/UploadImage", s.handleUpload)
		r.Post("/", s.handleCreate)
		r.Get("/{id}", s.handleGet)
		r.Put("/{id}", s.handleUpdate)
		r.Delete("/{id}", s.handleDelete)
	})
	return r
}

// Seed inserts users as if they had been created earlier. Users without an ID
// get a fresh one.
func (s *Server) Seed(users ...api.UserDTO) []api.UserDTO {
	s.mu.Lock()
	defer s.mu.Unlock()

	seeded := make([]api.UserDTO, 0, len(users))
	for _, u := range users {
		if u.ID == "" {
			u.ID = uuid.NewString()
		}
		if u.CreatedAt == "" {
			u.CreatedAt = time.Now().UTC().Format(time.RFC3339)
		}
		if _, exists := s.users[u.ID]; !exists {
			s.order = append(s.order, u.ID)
		}
		s.users[u.ID] = u
		seeded = append(seeded, u)
	}
	return seeded
}

// FailNext makes the next call to endpoint answer success=false with messages.
func (s *Server) FailNext(endpoint string, messages ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[endpoint] = messages
}

func (s *Server) SetLatency(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latency = d
}

// Calls returns how many requests reached endpoint.
func (s *Server) Calls(endpoint string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[endpoint]
}

func (s *Server) Users() []api.UserDTO {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked()
}

func (s *Server) listLocked() []api.UserDTO {
	users := make([]api.UserDTO, 0, len(s.order))
	for _, id := range s.order {
		users = append(users, s.users[id])
	}
	return users
}

// begin records the call and reports a queued failure, if any.
func (s *Server) begin(endpoint string) ([]string, bool) {
	s.mu.Lock()
	s.calls[endpoint]++
	messages, fail := s.failures[endpoint]
	delete(s.failures, endpoint)
	latency := s.latency
	s.mu.Unlock()

	if latency > 0 {
		time.Sleep(latency)
	}
	return messages, fail
}

func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("ApiKey") != s.apiKey {
			s.logger.Warn("rejected request without valid api key", "path", r.URL.Path)
			writeFailure(w, http.StatusUnauthorized, "ApiKey is missing or invalid")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "contacts-api",
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if messages, fail := s.begin(api.EndpointList); fail {
		writeFailure(w, http.StatusOK, messages...)
		return
	}

	s.mu.Lock()
	users := s.listLocked()
	s.mu.Unlock()

	writeData(w, http.StatusOK, api.UserList{Users: users})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	if messages, fail := s.begin(api.EndpointGet); fail {
		writeFailure(w, http.StatusOK, messages...)
		return
	}

	s.mu.Lock()
	u, ok := s.users[chi.URLParam(r, "id")]
	s.mu.Unlock()

	if !ok {
		writeFailure(w, http.StatusNotFound, "User not found")
		return
	}
	writeData(w, http.StatusOK, u)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if messages, fail := s.begin(api.EndpointCreate); fail {
		writeFailure(w, http.StatusOK, messages...)
		return
	}

	req, ok := decodeUser(w, r)
	if !ok {
		return
	}

	u := api.UserDTO{
		ID:              uuid.NewString(),
		CreatedAt:       time.Now().UTC().Format(time.RFC3339),
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		PhoneNumber:     req.PhoneNumber,
		ProfileImageURL: req.ProfileImageURL,
	}

	s.mu.Lock()
	s.users[u.ID] = u
	s.order = append(s.order, u.ID)
	s.mu.Unlock()

	s.logger.Info("user created", "id", u.ID)
	writeData(w, http.StatusOK, u)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if messages, fail := s.begin(api.EndpointUpdate); fail {
		writeFailure(w, http.StatusOK, messages...)
		return
	}

	req, ok := decodeUser(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")

	s.mu.Lock()
	u, exists := s.users[id]
	if exists {
		u.FirstName = req.FirstName
		u.LastName = req.LastName
		u.PhoneNumber = req.PhoneNumber
		u.ProfileImageURL = req.ProfileImageURL
		s.users[id] = u
	}
	s.mu.Unlock()

	if !exists {
		writeFailure(w, http.StatusNotFound, "User not found")
		return
	}

	s.logger.Info("user updated", "id", id)
	writeData(w, http.StatusOK, u)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if messages, fail := s.begin(api.EndpointDelete); fail {
		writeFailure(w, http.StatusOK, messages...)
		return
	}

	id := chi.URLParam(r, "id")

	s.mu.Lock()
	_, exists := s.users[id]
	if exists {
		delete(s.users, id)
		for i, existing := range s.order {
			if existing == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	s.mu.Unlock()

	if !exists {
		writeFailure(w, http.StatusNotFound, "User not found")
		return
	}

	s.logger.Info("user deleted", "id", id)
	writeData(w, http.StatusOK, api.Empty{})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if messages, fail := s.begin(api.EndpointUpload); fail {
		writeFailure(w, http.StatusOK, messages...)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid multipart body")
		return
	}

	file, header, err := r.FormFile(api.ImageField)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Image is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType != "image/jpeg" && contentType != "image/png" {
		writeFailure(w, http.StatusBadRequest, "Only jpg/png allowed")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Failed to read image")
		return
	}

	ext := strings.ToLower(path.Ext(header.Filename))
	if ext == "" {
		ext = ".jpg"
	}
	name := uuid.NewString() + ext

	s.mu.Lock()
	s.images[name] = image{contentType: contentType, data: data}
	s.mu.Unlock()

	writeData(w, http.StatusOK, api.UploadResult{
		ImageURL: fmt.Sprintf("http://%s/images/%s", r.Host, name),
	})
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	img, ok := s.images[chi.URLParam(r, "name")]
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", img.contentType)
	w.Write(img.data)
}

func decodeUser(w http.ResponseWriter, r *http.Request) (api.UserRequest, bool) {
	var req api.UserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return req, false
	}
	if strings.TrimSpace(req.FirstName) == "" && strings.TrimSpace(req.PhoneNumber) == "" {
		writeFailure(w, http.StatusBadRequest, "First name or phone number is required")
		return req, false
	}
	return req, true
}

func writeData[T any](w http.ResponseWriter, status int, data T) {
	writeEnvelope(w, status, api.Envelope[T]{
		Success:  true,
		Messages: []string{},
		Data:     &data,
		Status:   status,
	})
}

func writeFailure(w http.ResponseWriter, status int, messages ...string) {
	if messages == nil {
		messages = []string{}
	}
	writeEnvelope(w, status, api.Envelope[api.Empty]{
		Success:  false,
		Messages: messages,
		Status:   status,
	})
}

func writeEnvelope[T any](w http.ResponseWriter, status int, env api.Envelope[T]) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(env)
}
