package forms

import (
	"encoding/json"
	"net/http"

	"github.com/btu-burial/backend/internal/response"
)

// Handler holds the public form submission endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates a new forms Handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

type joinRequest struct {
	FullName      string `json:"fullName"`
	ContactNumber string `json:"contactNumber"`
	ID            string `json:"id"`
	SchoolName    string `json:"schoolName"`
	OfficeContact string `json:"officeContact"`
}

// Join godoc
//
//	@Summary		Submit membership application
//	@Tags			forms
//	@Accept			json
//	@Produce		json
//	@Param			request	body		joinRequest	true	"Application"
//	@Success		200		{object}	map[string]string
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/api/membership/join [post]
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	req.FullName = Sanitize(req.FullName)
	req.ContactNumber = Sanitize(req.ContactNumber)
	req.ID = Sanitize(req.ID)
	req.SchoolName = Sanitize(req.SchoolName)
	req.OfficeContact = Sanitize(req.OfficeContact)

	if req.FullName == "" || req.ContactNumber == "" || req.ID == "" || req.SchoolName == "" || req.OfficeContact == "" {
		response.BadRequest(w, "All fields are required")
		return
	}

	if err := h.repo.InsertMember(r.Context(), req.FullName, req.ContactNumber, req.ID, req.SchoolName, req.OfficeContact); err != nil {
		response.InternalError(w, "Database error")
		return
	}
	response.Message(w, "Thank you for joining BTU Burial. We will contact you within 48 hours.")
}

type funeralNoticeRequest struct {
	YourName      string `json:"yourName"`
	ID            string `json:"id"`
	DeceasedName  string `json:"deceasedName"`
	DependentName string `json:"dependentName"`
}

// FuneralNotice godoc
//
//	@Summary		Submit funeral notice
//	@Tags			forms
//	@Accept			json
//	@Produce		json
//	@Param			request	body		funeralNoticeRequest	true	"Notice"
//	@Success		200		{object}	map[string]string
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/api/funeral-notice [post]
func (h *Handler) FuneralNotice(w http.ResponseWriter, r *http.Request) {
	var req funeralNoticeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	req.YourName = Sanitize(req.YourName)
	req.ID = Sanitize(req.ID)
	req.DeceasedName = Sanitize(req.DeceasedName)
	req.DependentName = Sanitize(req.DependentName)

	if req.YourName == "" || req.ID == "" || req.DeceasedName == "" {
		response.BadRequest(w, "Required fields are missing")
		return
	}

	var dependent *string
	if req.DependentName != "" {
		dependent = &req.DependentName
	}

	if err := h.repo.InsertFuneralNotice(r.Context(), req.YourName, req.ID, req.DeceasedName, dependent); err != nil {
		response.InternalError(w, "Database error")
		return
	}
	response.Message(w, "Thank you for submitting the funeral notice. We will contact you within 24 hours.")
}

type contactRequest struct {
	Name          string `json:"name"`
	ContactNumber string `json:"contactNumber"`
	Message       string `json:"message"`
}

// Contact godoc
//
//	@Summary		Submit contact message
//	@Tags			forms
//	@Accept			json
//	@Produce		json
//	@Param			request	body		contactRequest	true	"Message"
//	@Success		200		{object}	map[string]string
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/api/contact [post]
func (h *Handler) Contact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	req.Name = Sanitize(req.Name)
	req.ContactNumber = Sanitize(req.ContactNumber)
	req.Message = Sanitize(req.Message)

	if req.Name == "" || req.ContactNumber == "" || req.Message == "" {
		response.BadRequest(w, "All fields are required")
		return
	}

	if err := h.repo.InsertContactMessage(r.Context(), req.Name, req.ContactNumber, req.Message); err != nil {
		response.InternalError(w, "Database error")
		return
	}
	response.Message(w, "Thank you for your message. We will contact you within 24 hours.")
}

// SurveyResponse carries one satisfaction survey submission.
type SurveyResponse struct {
	Satisfaction string  `json:"satisfaction"`
	Addressed    string  `json:"addressed"`
	ResponseTime string  `json:"responseTime"`
	Courtesy     string  `json:"courtesy"`
	Helpful      string  `json:"helpful"`
	Expectations string  `json:"expectations"`
	Suggestions  *string `json:"suggestions"`
	Recommend    string  `json:"recommend"`
	Difficulties *string `json:"difficulties"`
	Overall      string  `json:"overall"`
}

func (s *SurveyResponse) sanitize() {
	s.Satisfaction = Sanitize(s.Satisfaction)
	s.Addressed = Sanitize(s.Addressed)
	s.ResponseTime = Sanitize(s.ResponseTime)
	s.Courtesy = Sanitize(s.Courtesy)
	s.Helpful = Sanitize(s.Helpful)
	s.Expectations = Sanitize(s.Expectations)
	s.Recommend = Sanitize(s.Recommend)
	s.Overall = Sanitize(s.Overall)
	if s.Suggestions != nil {
		clean := Sanitize(*s.Suggestions)
		s.Suggestions = &clean
	}
	if s.Difficulties != nil {
		clean := Sanitize(*s.Difficulties)
		s.Difficulties = &clean
	}
}

func (s *SurveyResponse) valid() bool {
	return s.Satisfaction != "" && s.Addressed != "" && s.ResponseTime != "" &&
		s.Courtesy != "" && s.Helpful != "" && s.Expectations != "" &&
		s.Recommend != "" && s.Overall != ""
}

// Survey godoc
//
//	@Summary		Submit satisfaction survey
//	@Tags			forms
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SurveyResponse	true	"Survey"
//	@Success		200		{object}	map[string]string
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/api/survey [post]
func (h *Handler) Survey(w http.ResponseWriter, r *http.Request) {
	var req SurveyResponse
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	req.sanitize()

	if !req.valid() {
		response.BadRequest(w, "Required fields are missing")
		return
	}

	if err := h.repo.InsertSurveyResponse(r.Context(), req); err != nil {
		response.InternalError(w, "Database error")
		return
	}
	response.Message(w, "Thank you for your feedback.")
}

type electionRequest struct {
	FullName      string `json:"fullName"`
	ID            string `json:"id"`
	ContactNumber string `json:"contactNumber"`
}

// ElectionReg godoc
//
//	@Summary		Register for elections
//	@Tags			forms
//	@Accept			json
//	@Produce		json
//	@Param			request	body		electionRequest	true	"Registration"
//	@Success		200		{object}	map[string]string
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/api/election-reg [post]
func (h *Handler) ElectionReg(w http.ResponseWriter, r *http.Request) {
	var req electionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	req.FullName = Sanitize(req.FullName)
	req.ID = Sanitize(req.ID)
	req.ContactNumber = Sanitize(req.ContactNumber)

	if req.FullName == "" || req.ID == "" || req.ContactNumber == "" {
		response.BadRequest(w, "All fields are required")
		return
	}

	uniqueID, err := GenerateUniqueID()
	if err != nil {
		response.InternalError(w, "Server error")
		return
	}

	if err := h.repo.InsertElectionRegistration(r.Context(), req.FullName, req.ID, req.ContactNumber, uniqueID); err != nil {
		response.InternalError(w, "Database error")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{
		"message":  "Election registration completed.",
		"uniqueId": uniqueID,
	})
}
