package items

import (
	"strings"

	"github.com/angelmondragon/lostfound-backend/pkg/enums"
)

// Filter narrows a catalog query. Empty fields apply no constraint.
type Filter struct {
	Query    string
	Category string
	Location string
	Status   enums.ItemStatus
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching term anywhere, treating
// wildcard characters in term literally.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}
