package repository

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralizes LIKE wildcards in user-supplied text. Queries
// using it must carry an ESCAPE '\' clause.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
