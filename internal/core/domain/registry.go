package domain

import "time"

// Company and Unit form the client registry; a unit's destination tree
// lives under "<base>/<company label>/<unit label>".
type Company struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"external_id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
}

type Unit struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"external_id"`
	CompanyID  string    `json:"company_id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
}
