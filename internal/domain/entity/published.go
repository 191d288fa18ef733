package entity

// ScheduleDocument is the stored shape of the admin delivery schedule
type ScheduleDocument struct {
	PerDay int      `json:"perDay"`
	Days   []string `json:"days"`
	Times  []string `json:"times"`
}

// ContentDocument is the stored shape of one published content version
type ContentDocument struct {
	WeekID      string            `json:"weekId"`
	PublishedAt string            `json:"publishedAt"` // RFC 3339, UTC
	Snippets    []SnippetDocument `json:"snippets"`
}

// SnippetDocument is the stored shape of a snippet.
// Snippet is the short notification text; Body is the full teaching.
type SnippetDocument struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Subtitle  string            `json:"subtitle"`
	Body      string            `json:"body"`
	Snippet   string            `json:"snippet"`
	Scripture ScriptureDocument `json:"scripture"`
}

type ScriptureDocument struct {
	Reference string `json:"reference"`
	Text      string `json:"text"`
}
