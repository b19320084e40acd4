package domain

import "time"

// Status tracks where an article sits in the rewrite lifecycle.
type Status string

const (
	StatusPending   Status = "pending"
	StatusProcessed Status = "processed"
	StatusFailed    Status = "failed"
)

// Candidate is a parsed-but-not-yet-deduplicated article observation from a feed.
type Candidate struct {
	Title       string
	SourceLink  string
	Description string
	Content     string
	Thumbnail   string
	Category    string
	Creator     string
	Source      string
	PublishedAt time.Time
}

// Article is the persisted record. SourceLink is the dedup key and is unique
// across all records; ID is assigned once at creation and never reused.
type Article struct {
	ID               string    `json:"id"`
	SourceLink       string    `json:"sourceLink"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	RawContent       string    `json:"rawContent,omitempty"`
	RewrittenContent string    `json:"rewrittenContent,omitempty"`
	Thumbnail        string    `json:"thumbnail,omitempty"`
	Category         string    `json:"category,omitempty"`
	Creator          string    `json:"creator,omitempty"`
	Source           string    `json:"source,omitempty"`
	Status           Status    `json:"status"`
	PublishedAt      time.Time `json:"publishedAt"`
	CreatedAt        time.Time `json:"createdAt"`
	ProcessedAt      time.Time `json:"processedAt,omitzero"`
	SEO              *SEOData  `json:"seo,omitempty"`
}

// SEOData is derived metadata. It is rebuildable at any time from the record
// itself and is never authoritative.
type SEOData struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	Canonical   string   `json:"canonical"`
}

// Processed reports whether the record finished the rewrite stage.
func (a Article) Processed() bool {
	return a.Status == StatusProcessed
}

// LastModified picks the timestamp exposed in sitemaps: the processing time
// when set, otherwise the ingestion time.
func (a Article) LastModified() time.Time {
	if !a.ProcessedAt.IsZero() {
		return a.ProcessedAt
	}
	return a.CreatedAt
}
