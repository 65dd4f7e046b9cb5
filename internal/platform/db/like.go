package db

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike quotes the LIKE metacharacters in s so it matches literally.
// Use it with ESCAPE '\'.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Contains returns a LIKE pattern matching values that contain s.
func Contains(s string) string {
	return "%" + EscapeLike(s) + "%"
}
