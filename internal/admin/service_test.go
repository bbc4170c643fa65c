package admin

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/btu-burial/backend/internal/config"
)

func TestStatsKey(t *testing.T) {
	assert.Equal(t, "members", statsKey("members"))
	assert.Equal(t, "funeralNotices", statsKey("funeral_notices"))
	assert.Equal(t, "contactMessages", statsKey("contact_messages"))
	assert.Equal(t, "surveyResponses", statsKey("survey_responses"))
	assert.Equal(t, "electionRegistrations", statsKey("election_registrations"))
}

func TestIssueToken(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret"}
	svc := NewService(nil, nil, cfg)

	signed, err := svc.issueToken("admin")
	require.NoError(t, err)

	token, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "admin", claims["sub"])

	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), exp.Time, time.Minute)
}

func TestIssueTokenRejectsWrongSecret(t *testing.T) {
	svc := NewService(nil, nil, &config.Config{JWTSecret: "real-secret"})

	signed, err := svc.issueToken("admin")
	require.NoError(t, err)

	_, err = jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return []byte("forged-secret"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	assert.Error(t, err)
}
