package domain

// Defaults applied to lookup results with missing fields.
const (
	UnknownTitle  = "Unknown Title"
	UnknownAuthor = "Unknown Author"
)

// BookCandidate is a lookup match a user can add to their shelf.
type BookCandidate struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	PageCount     *int   `json:"page_count"`
	CoverURL      string `json:"cover_url,omitempty"`
	Description   string `json:"description,omitempty"`
	PublishedDate string `json:"published_date,omitempty"`
}
