package main

import (
	"encoding/json"
	"os"

	"github.com/refbridge/crms/internal/analytics"
	"github.com/refbridge/crms/internal/model"
)

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// candidateRow is the short listing shape.
type candidateRow struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	JobTitle string `json:"jobTitle"`
	Status   string `json:"status"`
	Email    string `json:"email"`
}

func printCandidates(list []model.Candidate) {
	rows := make([]candidateRow, 0, len(list))
	for _, c := range list {
		rows = append(rows, candidateRow{
			ID:       c.Key(),
			Name:     c.Name,
			JobTitle: c.JobTitle,
			Status:   string(c.Status),
			Email:    c.Email,
		})
	}
	printJSON(rows)
}

func printAnalytics(f *analytics.Fetcher) {
	if stats := f.Stats(); stats != nil {
		printJSON(stats)
		return
	}
	data, layout := f.Chart()
	printJSON(map[string]json.RawMessage{"data": data, "layout": layout})
}
