package imageref

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestToExternal(t *testing.T) {
	driveID := "1A2b3C4d5E6f7G8h9I0jKlMnOpQrStUv"

	tests := []struct {
		name   string
		stored *string
		want   *string
	}{
		{"nil stays nil", nil, nil},
		{"empty stays nil", strPtr(""), nil},
		{"proxy path unchanged", strPtr("/proxy-image/" + driveID), strPtr("/proxy-image/" + driveID)},
		{"bare id wrapped", strPtr(driveID), strPtr("/proxy-image/" + driveID)},
		{"legacy http url degrades to nil", strPtr("http://www.btuburial.co.bw/uploads/news/pic.jpg"), nil},
		{"legacy https url degrades to nil", strPtr("https://drive.google.com/uc?id=abc123"), nil},
		{"short junk degrades to nil", strPtr("pic.jpg"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToExternal(tt.stored)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestToExternalDoesNotMutateInput(t *testing.T) {
	stored := strPtr("1A2b3C4d5E6f7G8h9I0jKlMnOpQrStUv")
	ToExternal(stored)
	assert.Equal(t, "1A2b3C4d5E6f7G8h9I0jKlMnOpQrStUv", *stored)
}

func TestExtractTokenIdempotent(t *testing.T) {
	inputs := []string{
		"1A2b3C4d5E6f7G8h9I0jKlMnOpQrStUv",
		"/proxy-image/1A2b3C4d5E6f7G8h9I0jKlMnOpQrStUv",
		"/proxy-image/news-1693526400000-a1b2c3d4.jpg",
		"news-1693526400000-a1b2c3d4.jpg?alt=media",
		"https://drive.google.com/uc?id=abc&export=download",
	}

	for _, in := range inputs {
		once := ExtractToken(in)
		twice := ExtractToken(once)
		assert.Equal(t, once, twice, "input %q", in)
		assert.NotContains(t, once, "/")
		assert.NotContains(t, once, "?")
	}
}

func TestRoundTripNewFormat(t *testing.T) {
	tokens := []string{
		strings.Repeat("a", 25),
		"1A2b3C4d5E6f7G8h9I0jKlMnOpQrStUv",
		strings.Repeat("Z", 25) + "_-" + strings.Repeat("0", 10),
	}

	for _, token := range tokens {
		external := ToExternal(&token)
		require.NotNil(t, external, "token %q", token)
		assert.Equal(t, token, ExtractToken(*external))
	}
}

func TestToStoredRoundTrip(t *testing.T) {
	stored := ToStored("news-1693526400000-a1b2c3d4.jpg")
	assert.Equal(t, "/proxy-image/news-1693526400000-a1b2c3d4.jpg", stored)

	// Anything written through ToStored must survive the read-side pass untouched.
	external := ToExternal(&stored)
	require.NotNil(t, external)
	assert.Equal(t, stored, *external)
	assert.Equal(t, "news-1693526400000-a1b2c3d4.jpg", ExtractToken(*external))
}
