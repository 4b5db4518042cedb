package models

import "time"

// StockRecord is the per-partner aggregate ledger. The invariant
// TotalAvailable == TotalAllocated - TotalUsed holds after every mutation.
type StockRecord struct {
	ID             int64     `json:"id"`
	PartnerID      int64     `json:"partner_id"`
	PartnerName    string    `json:"partner_name,omitempty"`
	PartnerType    string    `json:"partner_type,omitempty"`
	PartnerCode    string    `json:"partner_code,omitempty"`
	ProvinceCode   string    `json:"province_code,omitempty"`
	TotalAllocated int       `json:"total_allocated"`
	TotalUsed      int       `json:"total_used"`
	TotalAvailable int       `json:"total_available"`
	LastUpdated    time.Time `json:"last_updated"`
}

// StockSummary aggregates the ledgers of all active partners.
type StockSummary struct {
	TotalAllocated int `json:"total_allocated"`
	TotalUsed      int `json:"total_used"`
	TotalAvailable int `json:"total_available"`
	ActivePartners int `json:"active_partners"`
}
