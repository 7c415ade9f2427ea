package exports

import "time"

// Export is a rendered document kept in object storage.
type Export struct {
	ID          string
	OwnerID     string
	Title       string
	Category    string
	FileName    string
	StorageKey  string
	ContentType string
	SizeBytes   int64
	ItemCount   int
	CreatedAt   time.Time
}
