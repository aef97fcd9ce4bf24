package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"image/jpeg"
	"net/http"
	"strconv"
	"sync"
	"time"
	"vincit.fi/photo-frame/api"
	"vincit.fi/photo-frame/api/apitype"
	"vincit.fi/photo-frame/common/logger"
)

const maxSlideSize = 1920

// Slides gives the photo currently on display.
type Slides interface {
	Current() *apitype.Photo
}

// Refresher pulls new photos and reloads the feed.
type Refresher interface {
	Refresh(ctx context.Context) error
}

type Counter interface {
	Count() int
}

type Options struct {
	Port           int
	AllowedOrigins []string
	// CastSecret and CastHandler serve the rendered slide to cast devices.
	CastSecret  string
	CastHandler http.Handler
}

type Dependencies struct {
	Service   api.CategoryService
	Refresher Refresher
	Feed      Counter
	Slides    Slides
	Loader    api.PhotoLoader
}

type Server struct {
	options      Options
	dependencies Dependencies
	httpServer   *http.Server
	mux          sync.Mutex
}

type photoResponse struct {
	Id       int64  `json:"id,omitempty"`
	Path     string `json:"path"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
}

type tagRequest struct {
	Path string   `json:"path"`
	Tags []string `json:"tags"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func NewServer(options Options, dependencies Dependencies) *Server {
	return &Server{
		options:      options,
		dependencies: dependencies,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(loggingMiddleware)

	if len(s.options.AllowedOrigins) > 0 {
		c := cors.New(cors.Options{
			AllowedOrigins: s.options.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Accept"},
		})
		r.Use(c.Handler)
	}

	r.Get("/healthz", s.getHealthz)
	r.Route("/api", func(r chi.Router) {
		r.Get("/photos", s.getPhotos)
		r.Post("/photos/tags", s.postTags)
		r.Post("/refresh", s.postRefresh)
		r.Get("/slide", s.getSlide)
		r.Get("/slide/image", s.getSlideImage)
	})
	if s.options.CastHandler != nil && s.options.CastSecret != "" {
		r.Get("/"+s.options.CastSecret+"/{cacheBuster}", s.options.CastHandler.ServeHTTP)
	}
	return r
}

// Start serves in the background until Shutdown.
func (s *Server) Start() {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.httpServer != nil {
		logger.Warn.Println("Server already running")
		return
	}

	address := ":" + strconv.Itoa(s.options.Port)
	s.httpServer = &http.Server{Addr: address, Handler: s.Router(), ReadHeaderTimeout: 10 * time.Second}
	logger.Info.Printf("Starting HTTP server at port %d", s.options.Port)
	go func(httpServer *http.Server) {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error.Printf("Error while running HTTP server: %s", err)
		}
	}(s.httpServer)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.httpServer == nil {
		logger.Debug.Println("No server running")
		return nil
	}
	logger.Info.Println("Shutting down HTTP server")
	err := s.httpServer.Shutdown(ctx)
	s.httpServer = nil
	return err
}

func (s *Server) getHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getPhotos(w http.ResponseWriter, r *http.Request) {
	photos, err := s.dependencies.Service.Load(r.URL.Query().Get("categories"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	response := make([]photoResponse, len(photos))
	for i, photo := range photos {
		response[i] = toPhotoResponse(photo)
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) postTags(w http.ResponseWriter, r *http.Request) {
	var request tagRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request: %w", err))
		return
	} else if request.Path == "" {
		writeError(w, http.StatusBadRequest, errors.New("path is required"))
		return
	}

	for _, tag := range apitype.WithoutAll(apitype.ParseTags(request.Tags...)) {
		if err := apitype.ValidateTag(tag); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	if err := s.dependencies.Service.Save(request.Path, request.Tags...); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) postRefresh(w http.ResponseWriter, r *http.Request) {
	if s.dependencies.Refresher == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("refresh not available"))
		return
	}
	if err := s.dependencies.Refresher.Refresh(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	count := 0
	if s.dependencies.Feed != nil {
		count = s.dependencies.Feed.Count()
	}
	writeJSON(w, http.StatusOK, map[string]int{"photos": count})
}

func (s *Server) getSlide(w http.ResponseWriter, r *http.Request) {
	photo := s.currentSlide()
	if photo == nil {
		writeError(w, http.StatusNotFound, errors.New("no slide"))
		return
	}
	writeJSON(w, http.StatusOK, toPhotoResponse(photo))
}

// getSlideImage returns the current slide scaled to fit width x height.
func (s *Server) getSlideImage(w http.ResponseWriter, r *http.Request) {
	photo := s.currentSlide()
	if photo == nil || s.dependencies.Loader == nil {
		writeError(w, http.StatusNotFound, errors.New("no slide"))
		return
	}

	width, widthErr := strconv.Atoi(r.URL.Query().Get("width"))
	height, heightErr := strconv.Atoi(r.URL.Query().Get("height"))
	if widthErr != nil || heightErr != nil || width <= 0 || height <= 0 || width > maxSlideSize || height > maxSlideSize {
		writeError(w, http.StatusBadRequest, fmt.Errorf("width and height must be between 1 and %d", maxSlideSize))
		return
	}

	img, err := s.dependencies.Loader.LoadScaled(photo, apitype.SizeOf(width, height))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	buffer := new(bytes.Buffer)
	if err := jpeg.Encode(buffer, img, nil); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(buffer.Len()))
	w.Write(buffer.Bytes())
}

func (s *Server) currentSlide() *apitype.Photo {
	if s.dependencies.Slides == nil {
		return nil
	}
	return s.dependencies.Slides.Current()
}

func toPhotoResponse(photo *apitype.Photo) photoResponse {
	return photoResponse{
		Id:       int64(photo.Id()),
		Path:     photo.Path(),
		Title:    photo.Title(),
		Subtitle: photo.Subtitle(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error.Printf("Could not write response: %s", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	logger.Warn.Printf("Request failed (%d): %s", status, err)
	writeJSON(w, status, errorResponse{Message: err.Error()})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug.Printf("%s %s in %s", r.Method, r.URL.Path, time.Since(start))
	})
}
