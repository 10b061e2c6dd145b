package store

import "strings"

const likeEscapeClause = "ESCAPE '\\'"

var likeReplacer = strings.NewReplacer(
	"\\", "\\\\",
	"%", "\\%",
	"_", "\\_",
)

// escapeLikePattern escapes LIKE wildcards in a user-supplied value so it
// matches literally inside a pattern.
func escapeLikePattern(value string) string {
	return likeReplacer.Replace(value)
}

// buildContainsPattern returns a %value% LIKE pattern with wildcards in
// value escaped. The match is case-insensitive: callers lower both the
// column and the pattern.
func buildContainsPattern(value string) string {
	return "%" + escapeLikePattern(strings.ToLower(value)) + "%"
}
