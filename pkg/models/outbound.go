package models

import (
	"time"

	"github.com/Ramsey-B/briar/pkg/database"
)

// OutboundMessageStatus tracks delivery of a composed message.
type OutboundMessageStatus string

const (
	OutboundMessageStatusQueued OutboundMessageStatus = "queued"
	OutboundMessageStatusSent   OutboundMessageStatus = "sent"
	OutboundMessageStatusFailed OutboundMessageStatus = "failed"
)

// OutboundMessage is the audit record of a property rundown sent to a client.
type OutboundMessage struct {
	ID          string                   `json:"id" db:"id"`
	DemandID    string                   `json:"demand_id" db:"demand_id"`
	PropertyIDs database.JSONB[[]string] `json:"property_ids" db:"property_ids"`
	Message     string                   `json:"message" db:"message"`
	Status      OutboundMessageStatus    `json:"status" db:"status"`
	CreatedAt   time.Time                `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at" db:"updated_at"`
}

// SendMatchesRequest selects which matched listings to send to the client.
type SendMatchesRequest struct {
	DemandID    string   `json:"demand_id" validate:"required,uuid"`
	PropertyIDs []string `json:"property_ids"`
}
