package analysis

import "github.com/FranksOps/hotwatch/internal/model"

// listPreviewLimit caps the new/removed word lists in a trend report.
const listPreviewLimit = 10

// RankChange records one term moving between two snapshots. Change is
// previous rank minus current rank: positive means the term moved up.
type RankChange struct {
	Word         string `json:"word"`
	CurrentRank  int    `json:"current_rank"`
	PreviousRank int    `json:"previous_rank"`
	Change       int    `json:"change"`
}

// TrendReport compares two snapshots of the trending list.
type TrendReport struct {
	NoPreviousData bool         `json:"no_previous_data,omitempty"`
	NewItems       int          `json:"new_items"`
	RemovedItems   int          `json:"removed_items"`
	RankChanges    []RankChange `json:"rank_changes"`
	NewWords       []string     `json:"new_words_list"`
	RemovedWords   []string     `json:"removed_words_list"`
}

// DiffTrend compares the current item list against a previous one. With
// no previous data it returns a sentinel report instead of failing.
// Duplicate terms within one list are tolerated: the last occurrence
// wins, matching map construction order.
func DiffTrend(current, previous []model.Item) TrendReport {
	if len(previous) == 0 {
		return TrendReport{NoPreviousData: true}
	}

	currentByWord := indexByWord(current)
	previousByWord := indexByWord(previous)

	report := TrendReport{
		RankChanges:  []RankChange{},
		NewWords:     []string{},
		RemovedWords: []string{},
	}

	for _, word := range wordOrder(current) {
		if _, ok := previousByWord[word]; !ok {
			report.NewItems++
			if len(report.NewWords) < listPreviewLimit {
				report.NewWords = append(report.NewWords, word)
			}
		}
	}

	for _, word := range wordOrder(previous) {
		if _, ok := currentByWord[word]; !ok {
			report.RemovedItems++
			if len(report.RemovedWords) < listPreviewLimit {
				report.RemovedWords = append(report.RemovedWords, word)
			}
		}
	}

	for _, word := range wordOrder(current) {
		prev, ok := previousByWord[word]
		if !ok {
			continue
		}
		cur := currentByWord[word]
		change := prev.Rank - cur.Rank
		if change == 0 {
			continue
		}
		report.RankChanges = append(report.RankChanges, RankChange{
			Word:         word,
			CurrentRank:  cur.Rank,
			PreviousRank: prev.Rank,
			Change:       change,
		})
	}

	return report
}

func indexByWord(items []model.Item) map[string]model.Item {
	m := make(map[string]model.Item, len(items))
	for _, item := range items {
		m[item.Word] = item
	}
	return m
}

// wordOrder returns the distinct words in first-appearance order, keeping
// diff output deterministic.
func wordOrder(items []model.Item) []string {
	seen := make(map[string]struct{}, len(items))
	order := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.Word]; ok {
			continue
		}
		seen[item.Word] = struct{}{}
		order = append(order, item.Word)
	}
	return order
}
