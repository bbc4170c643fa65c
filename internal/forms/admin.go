package forms

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/btu-burial/backend/internal/response"
)

// AdminHandler holds the triage endpoints shared by all submission forms.
type AdminHandler struct {
	repo *Repository
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(repo *Repository) *AdminHandler {
	return &AdminHandler{repo: repo}
}

func formFromRequest(w http.ResponseWriter, r *http.Request) (Definition, bool) {
	def, ok := Lookup(chi.URLParam(r, "form"))
	if !ok {
		response.NotFound(w, "Unknown form")
	}
	return def, ok
}

func idFromRequest(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.NotFound(w, "Record not found")
		return 0, false
	}
	return id, true
}

type adminListResponse struct {
	Data       []map[string]any `json:"data"`
	Pagination struct {
		CurrentPage int `json:"currentPage"`
		TotalPages  int `json:"totalPages"`
		TotalItems  int `json:"totalItems"`
		Unread      int `json:"unread"`
	} `json:"pagination"`
}

// List godoc
//
//	@Summary		List form submissions
//	@Description	Returns one page of submissions for the given form, newest first, optionally filtered by read status.
//	@Tags			admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			form	path		string	true	"Form name"	Enums(members, funeral_notices, contact_messages, survey_responses, election_registrations)
//	@Param			status	query		string	false	"Filter: all, read or unread"	default(all)
//	@Param			page	query		int		false	"Page number"					default(1)
//	@Param			limit	query		int		false	"Items per page"				default(10)
//	@Success		200		{object}	adminListResponse
//	@Failure		404		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/api/admin/{form} [get]
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	def, ok := formFromRequest(w, r)
	if !ok {
		return
	}

	status := r.URL.Query().Get("status")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	records, err := h.repo.ListPage(r.Context(), def, status, limit, (page-1)*limit)
	if err != nil {
		response.InternalError(w, "Error fetching "+def.Name)
		return
	}
	total, unread, err := h.repo.Counts(r.Context(), def.Table)
	if err != nil {
		response.InternalError(w, "Error fetching "+def.Name)
		return
	}

	resp := adminListResponse{Data: records}
	resp.Pagination.CurrentPage = page
	resp.Pagination.TotalPages = int(math.Ceil(float64(total) / float64(limit)))
	resp.Pagination.TotalItems = total
	resp.Pagination.Unread = unread
	response.JSON(w, http.StatusOK, resp)
}

type markReadRequest struct {
	ReadStatus string `json:"read_status"`
}

// MarkRead godoc
//
//	@Summary		Mark submission read or unread
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			form	path		string			true	"Form name"
//	@Param			id		path		int				true	"Record ID"
//	@Param			request	body		markReadRequest	true	"New read status"
//	@Success		200		{object}	map[string]any
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		404		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/api/admin/{form}/{id}/read [patch]
func (h *AdminHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	def, ok := formFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := idFromRequest(w, r)
	if !ok {
		return
	}

	var req markReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.ReadStatus != "read" && req.ReadStatus != "unread" {
		response.BadRequest(w, "Invalid read_status")
		return
	}

	record, err := h.repo.SetReadStatus(r.Context(), def, id, req.ReadStatus)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "Record not found in "+def.Name)
			return
		}
		response.InternalError(w, "Error updating read status")
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"message": "Read status updated",
		"record":  record,
	})
}

type replyRequest struct {
	AdminReply string `json:"admin_reply"`
	Status     string `json:"status"`
}

// Reply godoc
//
//	@Summary		Reply to a submission
//	@Description	Stores the admin reply, moves the submission to pending or done, and marks it read. Only members, funeral notices and contact messages accept replies.
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			form	path		string			true	"Form name"
//	@Param			id		path		int				true	"Record ID"
//	@Param			request	body		replyRequest	true	"Reply"
//	@Success		200		{object}	map[string]string
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		404		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/api/admin/{form}/{id}/reply [patch]
func (h *AdminHandler) Reply(w http.ResponseWriter, r *http.Request) {
	def, ok := formFromRequest(w, r)
	if !ok {
		return
	}
	if !def.HasReply {
		response.NotFound(w, "Form does not accept replies")
		return
	}
	id, ok := idFromRequest(w, r)
	if !ok {
		return
	}

	var req replyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.Status != "pending" && req.Status != "done" {
		response.BadRequest(w, "Invalid status")
		return
	}

	var reply *string
	if clean := Sanitize(req.AdminReply); clean != "" {
		reply = &clean
	}

	if err := h.repo.Reply(r.Context(), def, id, reply, req.Status); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "Record not found in "+def.Name)
			return
		}
		response.InternalError(w, "Error updating reply")
		return
	}

	response.Message(w, "Reply and status updated")
}

// Delete godoc
//
//	@Summary		Delete a submission
//	@Tags			admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			form	path		string	true	"Form name"
//	@Param			id		path		int		true	"Record ID"
//	@Success		200		{object}	map[string]string
//	@Failure		404		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/api/admin/{form}/{id} [delete]
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	def, ok := formFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := idFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.repo.Delete(r.Context(), def, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "Record not found in "+def.Name)
			return
		}
		response.InternalError(w, "Error deleting response")
		return
	}

	response.Message(w, "Response deleted")
}
