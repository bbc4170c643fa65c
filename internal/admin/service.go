package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/btu-burial/backend/internal/config"
	"github.com/btu-burial/backend/internal/forms"
)

// ErrInvalidCredentials is returned on a failed login. The same error covers
// unknown usernames and wrong passwords so responses don't reveal which.
var ErrInvalidCredentials = errors.New("invalid credentials")

// TableStats is the per-form count block on the dashboard.
type TableStats struct {
	Total  int `json:"total"`
	Unread int `json:"unread"`
}

// Dashboard aggregates submission counts and recent activity.
type Dashboard struct {
	Stats  map[string]TableStats `json:"stats"`
	Recent []RecentSubmission    `json:"recent"`
}

// Analysis holds the grouped survey counts.
type Analysis struct {
	Satisfaction []CountByValue `json:"satisfaction"`
	Recommend    []CountByValue `json:"recommend"`
}

// Service contains the admin business logic.
type Service struct {
	repo      *Repository
	formsRepo *forms.Repository
	cfg       *config.Config
}

// NewService creates a new admin Service.
func NewService(repo *Repository, formsRepo *forms.Repository, cfg *config.Config) *Service {
	return &Service{repo: repo, formsRepo: formsRepo, cfg: cfg}
}

// Login checks the password against the stored bcrypt hash and issues a
// session token.
func (s *Service) Login(ctx context.Context, username, password string) (string, *User, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.issueToken(u.Username)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, u, nil
}

// Dashboard builds the stats block for every registered form plus the
// recent-activity feed.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	stats := make(map[string]TableStats, len(forms.Definitions))
	for _, def := range forms.Definitions {
		total, unread, err := s.formsRepo.Counts(ctx, def.Table)
		if err != nil {
			return nil, err
		}
		stats[statsKey(def.Name)] = TableStats{Total: total, Unread: unread}
	}

	recent, err := s.repo.Recent(ctx)
	if err != nil {
		return nil, err
	}

	return &Dashboard{Stats: stats, Recent: recent}, nil
}

// SurveyAnalysis returns survey responses bucketed by satisfaction and by
// willingness to recommend.
func (s *Service) SurveyAnalysis(ctx context.Context) (*Analysis, error) {
	satisfaction, err := s.repo.SurveyCounts(ctx, "satisfaction")
	if err != nil {
		return nil, err
	}
	recommend, err := s.repo.SurveyCounts(ctx, "recommend")
	if err != nil {
		return nil, err
	}
	return &Analysis{Satisfaction: satisfaction, Recommend: recommend}, nil
}

// issueToken creates a signed JWT for the given admin.
func (s *Service) issueToken(username string) (string, error) {
	claims := jwt.MapClaims{
		"sub": username,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// statsKey maps registry names to the camelCase keys the dashboard UI reads.
func statsKey(name string) string {
	switch name {
	case "funeral_notices":
		return "funeralNotices"
	case "contact_messages":
		return "contactMessages"
	case "survey_responses":
		return "surveyResponses"
	case "election_registrations":
		return "electionRegistrations"
	default:
		return name
	}
}
