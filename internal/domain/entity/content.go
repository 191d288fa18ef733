package entity

import "time"

// Snippet is one short teaching delivered as a notification
type Snippet struct {
	ID                 string
	Title              string
	Subtitle           string
	Body               string
	ScriptureReference string
	ScriptureText      string
}

// ContentPool is the ordered set of snippets of one published content version
type ContentPool struct {
	WeekID      string
	PublishedAt time.Time
	Items       []Snippet
}

// Len returns the number of snippets, zero for a nil pool
func (p *ContentPool) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Items)
}
