package models

import "time"

// Demand is a buyer requirement captured by an agent. Budget, size, location
// and type drive matching; any of them may be blank except the client fields.
type Demand struct {
	ID              string     `json:"id" db:"id"`
	ClientName      string     `json:"client_name" db:"client_name"`
	ClientPhone     string     `json:"client_phone" db:"client_phone"`
	Budget          float64    `json:"budget" db:"budget"`
	Size            string     `json:"size" db:"size"`
	Location        string     `json:"location" db:"location"`
	Type            string     `json:"type" db:"type"`
	LastContactedAt *time.Time `json:"last_contacted_at,omitempty" db:"last_contacted_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// CreateDemandRequest is the request to record a buyer requirement
type CreateDemandRequest struct {
	ClientName  string  `json:"client_name" validate:"required"`
	ClientPhone string  `json:"client_phone" validate:"required"`
	Budget      float64 `json:"budget" validate:"gte=0"`
	Size        string  `json:"size"`
	Location    string  `json:"location"`
	Type        string  `json:"type"`
}

// UpdateDemandRequest is the request to update a buyer requirement. Nil
// fields are left unchanged.
type UpdateDemandRequest struct {
	ClientName  *string  `json:"client_name,omitempty"`
	ClientPhone *string  `json:"client_phone,omitempty"`
	Budget      *float64 `json:"budget,omitempty" validate:"omitempty,gte=0"`
	Size        *string  `json:"size,omitempty"`
	Location    *string  `json:"location,omitempty"`
	Type        *string  `json:"type,omitempty"`
}
