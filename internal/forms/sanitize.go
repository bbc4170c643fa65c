package forms

import "strings"

// sanitizer strips the characters used in the cheapest injection attempts.
// Parameterized queries are the real defense; this keeps the stored text
// clean for the admin UI as well.
var sanitizer = strings.NewReplacer("<", "", ">", "", "'", "", `"`, "", ";", "")

// Sanitize removes angle brackets, quotes and semicolons from user input.
func Sanitize(input string) string {
	return sanitizer.Replace(input)
}
