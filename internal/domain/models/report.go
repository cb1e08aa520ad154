package models

import "time"

// TraceabilityRow is one feeding event flattened for the traceability report.
type TraceabilityRow struct {
	AnimalTag  string    `json:"animalTag"`
	ClientName string    `json:"clientName"`
	FeedName   string    `json:"feedName"`
	DosePounds float64   `json:"dosePounds"`
	Date       time.Time `json:"date"`
}

// ClientConsumptionRow aggregates feed consumption for one client.
type ClientConsumptionRow struct {
	ClientName  string  `json:"clientName"`
	TotalPounds float64 `json:"totalPounds"`
	Events      int     `json:"events"`
	Animals     int     `json:"animals"`
}

// FeedConsumptionRow aggregates consumption for one feed name, with its share
// of the window's grand total.
type FeedConsumptionRow struct {
	FeedName    string  `json:"feedName"`
	Events      int     `json:"events"`
	TotalPounds float64 `json:"totalPounds"`
	Percentage  float64 `json:"percentage"`
}
