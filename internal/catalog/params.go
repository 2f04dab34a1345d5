package catalog

import (
	"net/url"
	"strings"

	"github.com/angelmondragon/lostfound-backend/internal/items"
	"github.com/angelmondragon/lostfound-backend/pkg/enums"
	"github.com/angelmondragon/lostfound-backend/pkg/pagination"
)

const (
	allValue = "all"
	maxParam = 200
)

// Params are the catalog request parameters after normalization.
type Params struct {
	Query    string `json:"q"`
	Category string `json:"category"`
	Location string `json:"location"`
	Tab      string `json:"tab"`
	Page     int    `json:"page"`
}

// ParseParams reads q, category, location, tab and page from values.
// Only q is trimmed. category, location and tab are compared verbatim, so
// "LOST" or " found " select no status and "Bags " matches no category.
func ParseParams(values url.Values) Params {
	tab := values.Get("tab")
	if !enums.ItemStatus(tab).IsTab() {
		tab = allValue
	}
	return Params{
		Query:    clip(values.Get("q")),
		Category: values.Get("category"),
		Location: values.Get("location"),
		Tab:      tab,
		Page:     pagination.ParsePageNumber(values.Get("page")),
	}
}

// Filter converts the params into a repository filter.
func (p Params) Filter() items.Filter {
	f := items.Filter{Query: strings.TrimSpace(p.Query)}
	if !isAll(p.Category) {
		f.Category = p.Category
	}
	if !isAll(p.Location) {
		f.Location = p.Location
	}
	if s := enums.ItemStatus(p.Tab); s.IsTab() {
		f.Status = s
	}
	return f
}

func isAll(v string) bool {
	return v == "" || v == allValue
}

func clip(v string) string {
	v = strings.TrimSpace(v)
	if r := []rune(v); len(r) > maxParam {
		return string(r[:maxParam])
	}
	return v
}
