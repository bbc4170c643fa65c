package forms

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"clean", "John Dlamini", "John Dlamini"},
		{"angle brackets", "<b>bold</b>", "bbold/b"},
		{"script tag", `<script>alert("x");</script>`, "scriptalert(x)/script"},
		{"quotes", `O'Brien said "no"`, "OBrien said no"},
		{"semicolon", "DROP TABLE members;", "DROP TABLE members"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"members", "funeral_notices", "contact_messages", "survey_responses", "election_registrations"} {
		def, ok := Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, name, def.Name)
		assert.NotEmpty(t, def.Fields)
	}

	_, ok := Lookup("admin_users")
	assert.False(t, ok, "the registry must not expose arbitrary tables")
	_, ok = Lookup("")
	assert.False(t, ok)
}

func TestReplyForms(t *testing.T) {
	replyable := map[string]bool{}
	for _, def := range Definitions {
		replyable[def.Name] = def.HasReply
	}
	assert.True(t, replyable["members"])
	assert.True(t, replyable["funeral_notices"])
	assert.True(t, replyable["contact_messages"])
	assert.False(t, replyable["survey_responses"])
	assert.False(t, replyable["election_registrations"])
}

func TestGenerateUniqueID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id, err := GenerateUniqueID()
		require.NoError(t, err)
		assert.Len(t, id, 9)
		for _, r := range id {
			assert.True(t, strings.ContainsRune(uniqueIDAlphabet, r), "unexpected character %q in %q", r, id)
		}
		seen[id] = true
	}
	// 36^9 codes; 50 draws colliding would point at a broken generator.
	assert.Len(t, seen, 50)
}
