// Package forms handles the public submission forms (membership, funeral
// notices, contact messages, surveys, election registrations) and the admin
// triage surface over them. The five tables share the same triage shape, so
// the admin side is table-driven off a small registry instead of five copies
// of the same CRUD.
package forms

import (
	"crypto/rand"
	"math/big"
)

// Field maps a database column to the JSON key the admin UI expects.
type Field struct {
	Column string
	JSON   string
}

// Definition describes one submission form: its URL segment, backing table,
// and the columns exposed to the admin listing.
type Definition struct {
	Name     string
	Table    string
	Fields   []Field
	HasReply bool // members, funeral notices and contact messages get admin replies
}

// Definitions is the full registry of triageable forms.
var Definitions = []Definition{
	{
		Name:  "members",
		Table: "members",
		Fields: []Field{
			{"full_name", "fullName"},
			{"contact_number", "contactNumber"},
			{"id_number", "idNumber"},
			{"school_name", "schoolName"},
			{"office_contact", "officeContact"},
			{"read_status", "read_status"},
			{"admin_reply", "admin_reply"},
			{"status", "status"},
			{"created_at", "created_at"},
		},
		HasReply: true,
	},
	{
		Name:  "funeral_notices",
		Table: "funeral_notices",
		Fields: []Field{
			{"your_name", "yourName"},
			{"id_number", "idNumber"},
			{"deceased_name", "deceasedName"},
			{"dependent_name", "dependentName"},
			{"read_status", "read_status"},
			{"admin_reply", "admin_reply"},
			{"status", "status"},
			{"created_at", "created_at"},
		},
		HasReply: true,
	},
	{
		Name:  "contact_messages",
		Table: "contact_messages",
		Fields: []Field{
			{"name", "name"},
			{"contact_number", "contactNumber"},
			{"message", "message"},
			{"read_status", "read_status"},
			{"admin_reply", "admin_reply"},
			{"status", "status"},
			{"created_at", "created_at"},
		},
		HasReply: true,
	},
	{
		Name:  "survey_responses",
		Table: "survey_responses",
		Fields: []Field{
			{"satisfaction", "satisfaction"},
			{"addressed", "addressed"},
			{"response_time", "responseTime"},
			{"courtesy", "courtesy"},
			{"helpful", "helpful"},
			{"expectations", "expectations"},
			{"suggestions", "suggestions"},
			{"recommend", "recommend"},
			{"difficulties", "difficulties"},
			{"overall", "overall"},
			{"read_status", "read_status"},
			{"created_at", "created_at"},
		},
	},
	{
		Name:  "election_registrations",
		Table: "election_registrations",
		Fields: []Field{
			{"full_name", "fullName"},
			{"id_number", "idNumber"},
			{"contact_number", "contactNumber"},
			{"unique_id", "uniqueId"},
			{"read_status", "read_status"},
			{"created_at", "created_at"},
		},
	},
}

// Lookup resolves a form by its URL segment.
func Lookup(name string) (Definition, bool) {
	for _, def := range Definitions {
		if def.Name == name {
			return def, true
		}
	}
	return Definition{}, false
}

const uniqueIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateUniqueID produces the 9-character uppercase registration code
// handed to election registrants.
func GenerateUniqueID() (string, error) {
	id := make([]byte, 9)
	max := big.NewInt(int64(len(uniqueIDAlphabet)))
	for i := range id {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		id[i] = uniqueIDAlphabet[n.Int64()]
	}
	return string(id), nil
}
