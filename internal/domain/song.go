package domain

// Song is a catalog entry. The catalog is the first arm of the metadata
// fallback chain; events carry their own denormalized copies for songs that
// have since left the library.
type Song struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Album  string `json:"album,omitempty"`
	Genre  string `json:"genre,omitempty"`
}
