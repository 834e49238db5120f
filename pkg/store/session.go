package store

// Document is one product review as stored in and retrieved from the vector store.
type Document struct {
	ID       string                 `json:"id"`
	Content  string                 `json:"content"`
	Score    float32                `json:"score"`
	Metadata map[string]interface{} `json:"metadata"`
}

const MetadataProductName = "product_name"

// NewReviewDocument pairs review text with its product title.
func NewReviewDocument(productName, review string) Document {
	return Document{
		Content:  review,
		Metadata: map[string]interface{}{MetadataProductName: productName},
	}
}

// ProductName returns the product label, or "" when absent.
func (d Document) ProductName() string {
	if v, ok := d.Metadata[MetadataProductName].(string); ok {
		return v
	}
	return ""
}

// Session is the conversation state of one client.
type Session struct {
	ID    string `json:"id"`
	Turns []Turn `json:"turns"`
}

// Turn is a single message in a session's history.
type Turn struct {
	Role    string `json:"role"` // "user" | "assistant"
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
