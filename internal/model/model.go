// Package model defines the shared data types for trending search
// retrieval: a single ranked item and the result set a crawl produces.
package model

import "time"

// Item is one trending search entry: the term itself, its platform-reported
// popularity score, and its position in the source list.
type Item struct {
	Word      string    `json:"word"`
	Heat      int       `json:"heat"`
	Rank      int       `json:"rank"`
	URL       string    `json:"url"`
	Category  string    `json:"category,omitempty"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}

// Result is a single crawl snapshot. Items keep parse order. Total is
// derived from the item list and must never be set independently.
type Result struct {
	Items     []Item    `json:"items"`
	Total     int       `json:"total"`
	CrawlTime time.Time `json:"crawl_time"`
	Source    string    `json:"source"`
}

// NewResult creates an empty result for the given source tag, stamped with
// the current time.
func NewResult(source string) *Result {
	return &Result{
		Items:     []Item{},
		CrawlTime: time.Now(),
		Source:    source,
	}
}

// AddItem appends an item and recomputes Total.
func (r *Result) AddItem(item Item) {
	r.Items = append(r.Items, item)
	r.Total = len(r.Items)
}

// TopN returns the first n items in rank order. If n exceeds the item
// count, all items are returned.
func (r *Result) TopN(n int) []Item {
	if n > len(r.Items) {
		n = len(r.Items)
	}
	return r.Items[:n]
}

// FilterByCategory returns the items whose category matches exactly.
func (r *Result) FilterByCategory(category string) []Item {
	var out []Item
	for _, item := range r.Items {
		if item.Category == category {
			out = append(out, item)
		}
	}
	return out
}
