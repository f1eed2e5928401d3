package models

import (
	"time"

	"github.com/Ramsey-B/briar/pkg/database"
)

// PropertyStatus tracks where a listing sits in its sales lifecycle. Only
// available listings are eligible for matching.
type PropertyStatus string

const (
	PropertyStatusAvailable PropertyStatus = "Available"
	PropertyStatusPending   PropertyStatus = "Pending"
	PropertyStatusSold      PropertyStatus = "Sold"
)

// Property is a single inventory listing.
type Property struct {
	ID          string                   `json:"id" db:"id"`
	Title       string                   `json:"title" db:"title"`
	Type        string                   `json:"type" db:"type"`
	Size        string                   `json:"size" db:"size"`
	Location    string                   `json:"location" db:"location"`
	Price       float64                  `json:"price" db:"price"`
	Beds        int                      `json:"beds" db:"beds"`
	Floors      int                      `json:"floors" db:"floors"`
	Status      PropertyStatus           `json:"status" db:"status"`
	Description string                   `json:"description" db:"description"`
	Features    database.JSONB[[]string] `json:"features" db:"features"`
	Images      database.JSONB[[]string] `json:"images" db:"images"`
	CreatedAt   time.Time                `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at" db:"updated_at"`
}

// CreatePropertyRequest is the request to add a listing to inventory
type CreatePropertyRequest struct {
	Title       string   `json:"title" validate:"required"`
	Type        string   `json:"type" validate:"required"`
	Size        string   `json:"size" validate:"required"`
	Location    string   `json:"location" validate:"required"`
	Price       float64  `json:"price" validate:"gte=0"`
	Beds        int      `json:"beds" validate:"gte=0"`
	Floors      int      `json:"floors" validate:"gte=0"`
	Status      string   `json:"status" validate:"omitempty,oneof=Available Pending Sold"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
	Images      []string `json:"images"`
}

// UpdatePropertyRequest is the request to update a listing. Nil fields are
// left unchanged.
type UpdatePropertyRequest struct {
	Title       *string  `json:"title,omitempty"`
	Type        *string  `json:"type,omitempty"`
	Size        *string  `json:"size,omitempty"`
	Location    *string  `json:"location,omitempty"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Beds        *int     `json:"beds,omitempty" validate:"omitempty,gte=0"`
	Floors      *int     `json:"floors,omitempty" validate:"omitempty,gte=0"`
	Status      *string  `json:"status,omitempty" validate:"omitempty,oneof=Available Pending Sold"`
	Description *string  `json:"description,omitempty"`
	Features    []string `json:"features,omitempty"`
	Images      []string `json:"images,omitempty"`
}

// PropertyFilter narrows inventory listings.
type PropertyFilter struct {
	Status   string `query:"status"`
	Type     string `query:"type"`
	Location string `query:"location"`
	Limit    int    `query:"limit"`
	Offset   int    `query:"offset"`
}
