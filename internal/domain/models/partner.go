package models

import "time"

// PartnerType enumerates the supported facility categories.
type PartnerType string

const (
	PartnerClinic       PartnerType = "klinik"
	PartnerHealthCenter PartnerType = "puskesmas"
	PartnerHospital     PartnerType = "rumah_sakit"
)

// ValidPartnerType reports whether the value is one of the three categories.
func ValidPartnerType(t PartnerType) bool {
	switch t {
	case PartnerClinic, PartnerHealthCenter, PartnerHospital:
		return true
	}
	return false
}

// Partner represents a recipient health facility. Partners are never
// hard-deleted; deactivation flips IsActive instead.
type Partner struct {
	ID           int64       `json:"id"`
	Name         string      `json:"name"`
	Type         PartnerType `json:"type"`
	Code         string      `json:"code"`
	ProvinceCode string      `json:"province_code"`
	Address      string      `json:"address,omitempty"`
	Phone        string      `json:"phone,omitempty"`
	Email        string      `json:"email,omitempty"`
	IsActive     bool        `json:"is_active"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	CreatedBy    int64       `json:"created_by"`
}

// NewPartnerInput carries the fields accepted when registering a partner.
type NewPartnerInput struct {
	Name         string      `json:"name" binding:"required"`
	Type         PartnerType `json:"type" binding:"required"`
	Code         string      `json:"code" binding:"required"`
	ProvinceCode string      `json:"province_code" binding:"required"`
	Address      string      `json:"address"`
	Phone        string      `json:"phone"`
	Email        string      `json:"email"`
}
