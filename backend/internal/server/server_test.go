package server

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/stretchr/testify/require"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"vincit.fi/photo-frame/api/apitype"
	"vincit.fi/photo-frame/backend/internal/category"
	"vincit.fi/photo-frame/backend/internal/photoloader"
)

type StubSlides struct {
	current *apitype.Photo
}

func (s *StubSlides) Current() *apitype.Photo {
	return s.current
}

type StubRefresher struct {
	err   error
	calls int
}

func (s *StubRefresher) Refresh(ctx context.Context) error {
	s.calls++
	return s.err
}

type StubCounter struct {
	count int
}

func (s *StubCounter) Count() int {
	return s.count
}

func initServer(t *testing.T) (*Server, *category.JsonService, *StubSlides, *StubRefresher) {
	t.Helper()
	service, err := category.NewJsonService(t.TempDir())
	require.Nil(t, err)
	slides := &StubSlides{}
	refresher := &StubRefresher{}
	sut := NewServer(Options{
		AllowedOrigins: []string{"http://frame.local"},
		CastSecret:     "secret",
		CastHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("cast"))
		}),
	}, Dependencies{
		Service:   service,
		Refresher: refresher,
		Feed:      &StubCounter{count: 7},
		Slides:    slides,
		Loader:    photoloader.NewLoader(2),
	})
	return sut, service, slides, refresher
}

func serve(handler http.Handler, method string, target string, body string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(method, target, strings.NewReader(body))
	handler.ServeHTTP(recorder, request)
	return recorder
}

func TestServer_Healthz(t *testing.T) {
	a := require.New(t)
	sut, _, _, _ := initServer(t)

	response := serve(sut.Router(), http.MethodGet, "/healthz", "")

	a.Equal(http.StatusOK, response.Code)
	a.JSONEq(`{"status": "ok"}`, response.Body.String())
}

func TestServer_Photos(t *testing.T) {
	a := require.New(t)
	sut, service, _, _ := initServer(t)
	router := sut.Router()
	a.Nil(service.Save("/p/sunset_beach.jpg", "beach, sunset"))
	a.Nil(service.Save("/p/city.jpg", "city"))

	t.Run("Load by categories", func(t *testing.T) {
		response := serve(router, http.MethodGet, "/api/photos?categories=beach,fog", "")

		a.Equal(http.StatusOK, response.Code)
		a.JSONEq(`[{"path": "/p/sunset_beach.jpg", "title": "Sunset Beach"}]`, response.Body.String())
	})

	t.Run("Load all", func(t *testing.T) {
		response := serve(router, http.MethodGet, "/api/photos", "")

		var photos []photoResponse
		a.Nil(json.Unmarshal(response.Body.Bytes(), &photos))
		a.Len(photos, 2)
	})

	t.Run("Save tags", func(t *testing.T) {
		response := serve(router, http.MethodPost, "/api/photos/tags", `{"path": "/p/city.jpg", "tags": ["Night"]}`)
		a.Equal(http.StatusNoContent, response.Code)

		photos, err := service.Load("night")
		a.Nil(err)
		a.Len(photos, 1)
		a.Equal("/p/city.jpg", photos[0].Path())
	})

	t.Run("Invalid requests", func(t *testing.T) {
		a.Equal(http.StatusBadRequest, serve(router, http.MethodPost, "/api/photos/tags", `{`).Code)
		a.Equal(http.StatusBadRequest, serve(router, http.MethodPost, "/api/photos/tags", `{"tags": ["x"]}`).Code)
		a.Equal(http.StatusBadRequest, serve(router, http.MethodPost, "/api/photos/tags", `{"path": "/p/a.jpg", "tags": [".hidden"]}`).Code)
		a.Equal(http.StatusBadRequest, serve(router, http.MethodPost, "/api/photos/tags", `{"path": "/p/a.jpg", "tags": ["beach, black/white"]}`).Code)
	})
}

func TestServer_Refresh(t *testing.T) {
	a := require.New(t)
	sut, _, _, refresher := initServer(t)
	router := sut.Router()

	response := serve(router, http.MethodPost, "/api/refresh", "")
	a.Equal(http.StatusOK, response.Code)
	a.JSONEq(`{"photos": 7}`, response.Body.String())
	a.Equal(1, refresher.calls)

	refresher.err = errors.New("feed offline")
	a.Equal(http.StatusBadGateway, serve(router, http.MethodPost, "/api/refresh", "").Code)
}

func TestServer_Slide(t *testing.T) {
	a := require.New(t)
	sut, _, slides, _ := initServer(t)
	router := sut.Router()

	t.Run("No slide yet", func(t *testing.T) {
		a.Equal(http.StatusNotFound, serve(router, http.MethodGet, "/api/slide", "").Code)
		a.Equal(http.StatusNotFound, serve(router, http.MethodGet, "/api/slide/image?width=10&height=10", "").Code)
	})

	path := filepath.Join(t.TempDir(), "mountain.png")
	file, err := os.Create(path)
	a.Nil(err)
	a.Nil(png.Encode(file, image.NewRGBA(image.Rect(0, 0, 200, 100))))
	a.Nil(file.Close())
	slides.current = apitype.NewPersistedPhoto(3, path, "").WithSubtitle("3 May 2021")

	t.Run("Current slide", func(t *testing.T) {
		response := serve(router, http.MethodGet, "/api/slide", "")

		a.Equal(http.StatusOK, response.Code)
		var slide photoResponse
		a.Nil(json.Unmarshal(response.Body.Bytes(), &slide))
		a.Equal(photoResponse{Id: 3, Path: path, Title: "Mountain", Subtitle: "3 May 2021"}, slide)
	})

	t.Run("Scaled image", func(t *testing.T) {
		response := serve(router, http.MethodGet, "/api/slide/image?width=50&height=50", "")

		a.Equal(http.StatusOK, response.Code)
		a.Equal("image/jpeg", response.Header().Get("Content-Type"))
		config, err := jpeg.DecodeConfig(response.Body)
		a.Nil(err)
		a.Equal(50, config.Width)
		a.Equal(25, config.Height)
	})

	t.Run("Invalid size", func(t *testing.T) {
		a.Equal(http.StatusBadRequest, serve(router, http.MethodGet, "/api/slide/image?width=0&height=10", "").Code)
		a.Equal(http.StatusBadRequest, serve(router, http.MethodGet, "/api/slide/image?width=abc&height=10", "").Code)
		a.Equal(http.StatusBadRequest, serve(router, http.MethodGet, "/api/slide/image?width=5000&height=10", "").Code)
	})
}

func TestServer_Cast(t *testing.T) {
	a := require.New(t)
	sut, _, _, _ := initServer(t)
	router := sut.Router()

	response := serve(router, http.MethodGet, "/secret/8b1f7c", "")
	a.Equal(http.StatusOK, response.Code)
	a.Equal("cast", response.Body.String())

	a.Equal(http.StatusNotFound, serve(router, http.MethodGet, "/wrong/8b1f7c", "").Code)
}

func TestServer_Cors(t *testing.T) {
	a := require.New(t)
	sut, _, _, _ := initServer(t)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	request.Header.Set("Origin", "http://frame.local")
	sut.Router().ServeHTTP(recorder, request)

	a.Equal("http://frame.local", recorder.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_StartAndShutdown(t *testing.T) {
	a := require.New(t)
	sut := NewServer(Options{Port: 0}, Dependencies{})

	a.Nil(sut.Shutdown(context.Background()))
	sut.Start()
	a.Nil(sut.Shutdown(context.Background()))
}
