// Package analysis computes aggregate statistics over a trending snapshot
// and compares two snapshots for trend movement.
package analysis

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/FranksOps/hotwatch/internal/model"
)

// WordCount is one histogram bucket. Histograms are kept as ordered
// slices, frequency-descending with first-seen order breaking ties, so
// the output is deterministic.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// HeatStats aggregates the heat values of items with heat > 0. Items with
// unknown heat are excluded here but still counted in TotalItems.
type HeatStats struct {
	Avg    float64 `json:"avg_heat"`
	Max    int     `json:"max_heat"`
	Min    int     `json:"min_heat"`
	Median float64 `json:"median_heat"`
}

// Stats is the aggregate view of one snapshot.
type Stats struct {
	TotalItems    int         `json:"total_items"`
	Heat          HeatStats   `json:"heat_stats"`
	Categories    []WordCount `json:"categories"`
	AvgWordLength float64     `json:"avg_word_length"`
	TopTags       []WordCount `json:"top_tags"`
	TopWords      []WordCount `json:"top_words"`
	CrawlTime     time.Time   `json:"crawl_time"`
}

// Analyze computes statistics for a snapshot. A nil or empty result
// yields nil: "no data" is a designed signal, not an error.
func Analyze(result *model.Result) *Stats {
	if result == nil || result.Total == 0 {
		return nil
	}

	items := result.Items

	var heats []int
	for _, item := range items {
		if item.Heat > 0 {
			heats = append(heats, item.Heat)
		}
	}

	lengthSum := 0
	for _, item := range items {
		lengthSum += utf8.RuneCountInString(item.Word)
	}

	tagCounter := newCounter()
	for _, item := range items {
		for _, tag := range item.Tags {
			tagCounter.add(tag)
		}
	}

	categoryCounter := newCounter()
	for _, item := range items {
		if item.Category != "" {
			categoryCounter.add(item.Category)
		}
	}

	wordCounter := newCounter()
	for _, item := range items {
		for _, w := range strings.Fields(item.Word) {
			wordCounter.add(w)
		}
	}

	return &Stats{
		TotalItems:    len(items),
		Heat:          heatStats(heats),
		Categories:    categoryCounter.mostCommon(0),
		AvgWordLength: float64(lengthSum) / float64(len(items)),
		TopTags:       tagCounter.mostCommon(10),
		TopWords:      wordCounter.mostCommon(20),
		CrawlTime:     result.CrawlTime,
	}
}

func heatStats(heats []int) HeatStats {
	if len(heats) == 0 {
		return HeatStats{}
	}

	sum := 0
	max := heats[0]
	min := heats[0]
	for _, h := range heats {
		sum += h
		if h > max {
			max = h
		}
		if h < min {
			min = h
		}
	}

	sorted := make([]int, len(heats))
	copy(sorted, heats)
	sort.Ints(sorted)

	var median float64
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		median = float64(sorted[mid])
	} else {
		median = float64(sorted[mid-1]+sorted[mid]) / 2
	}

	return HeatStats{
		Avg:    float64(sum) / float64(len(heats)),
		Max:    max,
		Min:    min,
		Median: median,
	}
}

// counter is a frequency map that remembers first-seen order so ties
// resolve deterministically.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string) {
	if _, seen := c.counts[key]; !seen {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

// mostCommon returns up to n buckets sorted by frequency descending,
// first-seen order for equal counts. n <= 0 returns all buckets.
func (c *counter) mostCommon(n int) []WordCount {
	out := make([]WordCount, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, WordCount{Word: key, Count: c.counts[key]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
