package documents

import "time"

// SaveRequest is the body of POST /documents.
type SaveRequest struct {
	Title    string            `json:"title" binding:"required,max=200"`
	Category string            `json:"category" binding:"required,max=100"`
	Content  string            `json:"content" binding:"required"`
	Metadata map[string]string `json:"metadata"`
}

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	DocumentID string            `json:"documentId"`
	Title      string            `json:"title"`
	Category   string            `json:"category"`
	Content    string            `json:"content,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
}

func toResponse(doc Document, withContent bool) DocumentResponse {
	resp := DocumentResponse{
		DocumentID: doc.ID,
		Title:      doc.Title,
		Category:   doc.Category,
		Metadata:   doc.Metadata,
		CreatedAt:  doc.CreatedAt,
	}
	if withContent {
		resp.Content = doc.Content
	}
	return resp
}
