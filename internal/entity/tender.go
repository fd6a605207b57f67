package entity

import "time"

// Tender is an immutable record from the ingest feed. The engine never
// writes tenders; they are identified by the source reference id, not by a
// locally generated uuid.
type Tender struct {
	Ref              string     `json:"ref"`
	Title            string     `json:"title"`
	Summary          string     `json:"summary"`
	BuyerName        string     `json:"buyerName"`
	BuyerCountry     string     `json:"buyerCountry"`
	PublishedAt      time.Time  `json:"publishedAt"`
	Deadline         *time.Time `json:"deadline"`
	Currency         string     `json:"currency"`
	ValueAmount      *float64   `json:"valueAmount"` // nil when the source omits the value
	CpvCodes         []string   `json:"cpvCodes"`
	Source           string     `json:"source"`
	CompetitionLevel string     `json:"competitionLevel"` // opaque feed signal, may be empty
	NewBuyer         bool       `json:"newBuyer"`         // feed flags first-time buyers
}
