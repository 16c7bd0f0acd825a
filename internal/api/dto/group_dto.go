package dto

import "time"

// GroupRequest payload for create/rename.
type GroupRequest struct {
	Name string `json:"name"`
}

// SubgroupRequest payload for subgroup add.
type SubgroupRequest struct {
	Name string `json:"name"`
}

// GroupResponse response.
type GroupResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Subgroups []string  `json:"subgroups"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
