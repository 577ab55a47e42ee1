package models

// ProviderID identifies an information-retrieval source.
type ProviderID string

const (
	ProviderWikipedia  ProviderID = "wikipedia"
	ProviderDuckDuckGo ProviderID = "duckduckgo"
)

// SearchResult is one normalized hit from a provider. Content is plain text.
type SearchResult struct {
	Title   string     `json:"title"   bson:"title"`
	Content string     `json:"content" bson:"content"`
	URL     string     `json:"url"     bson:"url"`
	Source  ProviderID `json:"source"  bson:"source"`
}
