package news

import (
	"errors"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/btu-burial/backend/internal/forms"
	"github.com/btu-burial/backend/internal/imageref"
	"github.com/btu-burial/backend/internal/response"
	"github.com/btu-burial/backend/internal/storage"
)

// maxUploadSize caps image uploads at 5MB.
const maxUploadSize = 5 << 20

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// Handler holds HTTP handlers for the news feed and the image proxy.
type Handler struct {
	svc   *Service
	store storage.Store
}

// NewHandler creates a new news Handler.
func NewHandler(svc *Service, store storage.Store) *Handler {
	return &Handler{svc: svc, store: store}
}

type listResponse struct {
	Data       []Item      `json:"data"`
	Pagination *Pagination `json:"pagination"`
}

type createResponse struct {
	Message string `json:"message"`
	News    *Item  `json:"news"`
}

// List godoc
//
//	@Summary		List news
//	@Description	Returns one page of news posts, newest first.
//	@Tags			news
//	@Produce		json
//	@Param			page	query		int	false	"Page number"		default(1)
//	@Param			limit	query		int	false	"Items per page"	default(10)
//	@Success		200		{object}	listResponse
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/api/news [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	items, pagination, err := h.svc.List(r.Context(), page, limit)
	if err != nil {
		response.InternalError(w, "Error fetching news")
		return
	}

	response.JSON(w, http.StatusOK, listResponse{Data: items, Pagination: pagination})
}

// Create godoc
//
//	@Summary		Create news post
//	@Description	Creates a news post from multipart form data: a text field and/or an image file (jpg, jpeg, png, gif, max 5MB).
//	@Tags			news
//	@Accept			mpfd
//	@Produce		json
//	@Param			text	formData	string	false	"Post body"
//	@Param			image	formData	file	false	"Image attachment"
//	@Success		201		{object}	createResponse
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/api/news [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+4096)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		response.BadRequest(w, "Invalid multipart form or file too large (max 5MB)")
		return
	}

	text := forms.Sanitize(r.FormValue("text"))

	var upload *Upload
	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		ext := strings.ToLower(path.Ext(header.Filename))
		if !allowedExtensions[ext] {
			response.BadRequest(w, "Only image files (jpg, jpeg, png, gif) are allowed")
			return
		}
		data, err := io.ReadAll(file)
		if err != nil {
			response.BadRequest(w, "Could not read uploaded file")
			return
		}
		upload = &Upload{Filename: header.Filename, Size: int64(len(data)), Data: data}
	case errors.Is(err, http.ErrMissingFile):
		// Text-only post.
	default:
		response.BadRequest(w, "Invalid image upload")
		return
	}

	item, err := h.svc.Create(r.Context(), text, upload)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			response.BadRequest(w, "Either text or image is required")
			return
		}
		response.InternalError(w, "Error adding news")
		return
	}

	response.JSON(w, http.StatusCreated, createResponse{Message: "News added successfully", News: item})
}

// Delete godoc
//
//	@Summary		Delete news post
//	@Description	Deletes a news post and, best-effort, its stored image.
//	@Tags			news
//	@Produce		json
//	@Param			id	path		int	true	"News ID"
//	@Success		200	{object}	map[string]string
//	@Failure		404	{object}	response.ErrorBody
//	@Failure		500	{object}	response.ErrorBody
//	@Router			/api/news/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.NotFound(w, "News not found")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "News not found")
			return
		}
		response.InternalError(w, "Error deleting news")
		return
	}

	response.Message(w, "News deleted successfully")
}

// ProxyImage godoc
//
//	@Summary		Fetch news image
//	@Description	Streams a stored image through the backend so storage-provider URLs never reach clients.
//	@Tags			news
//	@Produce		image/jpeg
//	@Param			token	path	string	true	"Image token"
//	@Success		200
//	@Failure		400	{object}	response.ErrorBody
//	@Failure		404	{object}	response.ErrorBody
//	@Failure		503	{object}	response.ErrorBody
//	@Failure		500	{object}	response.ErrorBody
//	@Router			/proxy-image/{token} [get]
func (h *Handler) ProxyImage(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "token")
	if raw == "" {
		response.BadRequest(w, "Image token is required")
		return
	}
	token := imageref.ExtractToken(raw)
	if token == "" {
		response.BadRequest(w, "Image token is required")
		return
	}

	contentType, body, err := h.store.Get(r.Context(), token)
	switch {
	case errors.Is(err, storage.ErrUnavailable):
		response.Unavailable(w, "Image service temporarily unavailable", "storage_unavailable")
		return
	case errors.Is(err, storage.ErrNotAnImage):
		response.BadRequest(w, "Not an image file")
		return
	case errors.Is(err, storage.ErrNotFound):
		response.NotFound(w, "Image not found")
		return
	case err != nil:
		response.InternalError(w, "Error fetching image")
		return
	}
	defer body.Close()

	// Blobs are immutable once created, so long client/CDN caching is safe.
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = io.Copy(w, body)
}
