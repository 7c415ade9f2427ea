package documents

import "time"

// Document is a piece of generated content saved by its owner.
type Document struct {
	ID        string
	OwnerID   string
	Title     string
	Category  string
	Content   string
	Metadata  map[string]string
	CreatedAt time.Time
}
