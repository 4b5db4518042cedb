package models

import (
	"fmt"
	"time"
)

// ProtocolStatus is the closed set of lifecycle states for a distributed
// kit. "terpakai" is the stored value for the used state, kept for
// compatibility with existing databases.
type ProtocolStatus string

const (
	StatusCreated   ProtocolStatus = "created"
	StatusDelivered ProtocolStatus = "delivered"
	StatusUsed      ProtocolStatus = "terpakai"
)

// ParseStatus validates a raw status value against the enum.
func ParseStatus(raw string) (ProtocolStatus, error) {
	switch s := ProtocolStatus(raw); s {
	case StatusCreated, StatusDelivered, StatusUsed:
		return s, nil
	}
	return "", fmt.Errorf("unknown protocol status %q", raw)
}

// UsedDelta returns the change to a partner's used counter implied by a
// transition: +1 entering the used state, -1 leaving it, 0 otherwise.
func UsedDelta(from, to ProtocolStatus) int {
	switch {
	case from != StatusUsed && to == StatusUsed:
		return 1
	case from == StatusUsed && to != StatusUsed:
		return -1
	default:
		return 0
	}
}

// ScanAction enumerates the operations a field scanner may request.
type ScanAction string

const (
	ActionMarkUsed      ScanAction = "mark_terpakai"
	ActionMarkDelivered ScanAction = "mark_delivered"
)

// TargetStatus maps a scan action to the status it sets.
func (a ScanAction) TargetStatus() (ProtocolStatus, error) {
	switch a {
	case ActionMarkUsed:
		return StatusUsed, nil
	case ActionMarkDelivered:
		return StatusDelivered, nil
	}
	return "", fmt.Errorf("unknown scan action %q", a)
}

// Protocol is one trackable kit, identified by its generated code.
type Protocol struct {
	ID           int64          `json:"id"`
	Code         string         `json:"code"`
	ProvinceCode string         `json:"province_code"`
	PartnerID    int64          `json:"partner_id"`
	PartnerName  string         `json:"partner_name,omitempty"`
	PartnerCode  string         `json:"partner_code,omitempty"`
	Status       ProtocolStatus `json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	CreatedBy    int64          `json:"created_by"`
	UpdatedBy    int64          `json:"updated_by"`
}
