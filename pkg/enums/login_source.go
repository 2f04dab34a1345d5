package enums

// LoginSource labels the surface a successful authentication came through.
// The column is free text; these are the values the recorder writes.
type LoginSource string

const (
	LoginSourceWebPortal LoginSource = "Web Portal"
	LoginSourceAdmin     LoginSource = "Admin"
)

// String implements fmt.Stringer.
func (s LoginSource) String() string {
	return string(s)
}
