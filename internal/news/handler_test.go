package news

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/btu-burial/backend/internal/storage"
)

func newTestRouter(store storage.Store) (*chi.Mux, *fakeRepo) {
	repo := newFakeRepo()
	svc := NewService(repo, store)
	h := NewHandler(svc, store)

	r := chi.NewRouter()
	r.Get("/api/news", h.List)
	r.Post("/api/news", h.Create)
	r.Delete("/api/news/{id}", h.Delete)
	r.Get("/proxy-image/{token}", h.ProxyImage)
	return r, repo
}

func multipartBody(t *testing.T, text, filename string, file []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if text != "" {
		require.NoError(t, mw.WriteField("text", text))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestCreateHandlerRejectsEmptyForm(t *testing.T) {
	router, repo := newTestRouter(storage.NewMemStore())

	body, contentType := multipartBody(t, "", "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/news", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, repo.inserts)
}

func TestCreateHandlerRejectsNonImageExtension(t *testing.T) {
	store := storage.NewMemStore()
	router, repo := newTestRouter(store)

	body, contentType := multipartBody(t, "come see", "malware.exe", []byte("MZ"))
	req := httptest.NewRequest(http.MethodPost, "/api/news", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, repo.inserts)
	assert.Equal(t, 0, store.Len())
}

func TestCreateHandlerSanitizesText(t *testing.T) {
	router, _ := newTestRouter(storage.NewMemStore())

	body, contentType := multipartBody(t, `<script>alert("hi");</script>`, "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/news", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		Message string `json:"message"`
		News    Item   `json:"news"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "News added successfully", resp.Message)
	require.NotNil(t, resp.News.Text)
	assert.Equal(t, "scriptalert(hi)/script", *resp.News.Text)
}

func TestCreateHandlerWithImage(t *testing.T) {
	store := storage.NewMemStore()
	router, _ := newTestRouter(store)

	body, contentType := multipartBody(t, "opening hours", "door.jpg", []byte("jpeg bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/news", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		News Item `json:"news"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.News.ImageURL)
	assert.True(t, strings.HasPrefix(*resp.News.ImageURL, "/proxy-image/"))
	assert.Equal(t, 1, store.Len())
}

func TestListHandler(t *testing.T) {
	router, repo := newTestRouter(storage.NewMemStore())
	text := "hello"
	_, err := repo.Insert(context.Background(), &text, nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/news?page=1&limit=5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data       []Item      `json:"data"`
		Pagination *Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 1)
	require.NotNil(t, resp.Pagination)
	assert.Equal(t, 1, resp.Pagination.TotalItems)
}

func TestDeleteHandlerUnknownID(t *testing.T) {
	router, _ := newTestRouter(storage.NewMemStore())

	req := httptest.NewRequest(http.MethodDelete, "/api/news/999", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProxyImageServesBlob(t *testing.T) {
	store := storage.NewMemStore()
	router, _ := newTestRouter(store)

	_, err := store.Put(context.Background(), "pic.png", strings.NewReader("png bytes"), 9, "image/png")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/proxy-image/pic.png", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
	data, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, "png bytes", string(data))
}

func TestProxyImageRejectsNonImage(t *testing.T) {
	store := storage.NewMemStore()
	router, _ := newTestRouter(store)

	_, err := store.Put(context.Background(), "notes.pdf", strings.NewReader("%PDF"), 4, "application/pdf")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/proxy-image/notes.pdf", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotContains(t, rec.Body.String(), "%PDF", "payload bytes must not leak")
}

func TestProxyImageNotFound(t *testing.T) {
	router, _ := newTestRouter(storage.NewMemStore())

	req := httptest.NewRequest(http.MethodGet, "/proxy-image/missing.png", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProxyImageStorageUnavailable(t *testing.T) {
	router, _ := newTestRouter(storage.Disabled{})

	req := httptest.NewRequest(http.MethodGet, "/proxy-image/anything.png", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "storage_unavailable", body.Error)
}
