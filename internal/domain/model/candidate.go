package model

import (
	"time"
)

type Candidate struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Party     string    `json:"party"`
	Slug      string    `json:"slug"`
	Age       int       `json:"age"`
	VoteCount int       `json:"voteCount"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TallyEntry is a candidate's row in the vote count listing.
type TallyEntry struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Party string `json:"party"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}
