package admin

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/btu-burial/backend/internal/forms"
	"github.com/btu-burial/backend/internal/response"
)

// Handler holds HTTP handlers for admin endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new admin Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message string    `json:"message"`
	Token   string    `json:"token"`
	User    loginUser `json:"user"`
}

type loginUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Login godoc
//
//	@Summary		Admin login
//	@Description	Verifies the password against the stored bcrypt hash and returns a session token.
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			request	body		loginRequest	true	"Credentials"
//	@Success		200		{object}	loginResponse
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		401		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/api/admin/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	req.Username = forms.Sanitize(req.Username)

	if req.Username == "" || req.Password == "" {
		response.BadRequest(w, "Username and password required")
		return
	}

	token, u, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Unauthorized(w, "Invalid credentials")
			return
		}
		response.InternalError(w, "Server error")
		return
	}

	response.JSON(w, http.StatusOK, loginResponse{
		Message: "Login successful",
		Token:   token,
		User:    loginUser{ID: u.ID, Username: u.Username},
	})
}

// Dashboard godoc
//
//	@Summary		Dashboard stats
//	@Description	Returns per-form total/unread counts and the five most recent submissions.
//	@Tags			admin
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	Dashboard
//	@Failure		500	{object}	response.ErrorBody
//	@Router			/api/admin/dashboard [get]
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.svc.Dashboard(r.Context())
	if err != nil {
		response.InternalError(w, "Error fetching dashboard stats")
		return
	}
	response.JSON(w, http.StatusOK, dashboard)
}

// SurveyAnalysis godoc
//
//	@Summary		Survey analysis
//	@Description	Returns survey responses grouped by satisfaction and by recommendation.
//	@Tags			admin
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	Analysis
//	@Failure		500	{object}	response.ErrorBody
//	@Router			/api/admin/survey_analysis [get]
func (h *Handler) SurveyAnalysis(w http.ResponseWriter, r *http.Request) {
	analysis, err := h.svc.SurveyAnalysis(r.Context())
	if err != nil {
		response.InternalError(w, "Error fetching survey analysis")
		return
	}
	response.JSON(w, http.StatusOK, analysis)
}
