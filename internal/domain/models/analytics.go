package models

import "time"

// DashboardStats summarizes protocols within a reporting window.
type DashboardStats struct {
	Total        int             `json:"total"`
	Created      int             `json:"created"`
	Delivered    int             `json:"delivered"`
	Used         int             `json:"terpakai"`
	TopProvinces []ProvinceCount `json:"top_provinces"`
}

// ProvinceCount pairs a province with its protocol count.
type ProvinceCount struct {
	ProvinceCode string `json:"province_code"`
	Name         string `json:"name"`
	Count        int    `json:"count"`
}

// DailyTrend is one day of protocol creation activity.
type DailyTrend struct {
	Date           string `json:"date"`
	Total          int    `json:"total"`
	Created        int    `json:"created"`
	Delivered      int    `json:"delivered"`
	Used           int    `json:"terpakai"`
	UniquePartners int    `json:"unique_partners"`
}

// PartnerPerformance ranks partners by distribution volume.
type PartnerPerformance struct {
	PartnerName    string  `json:"partner_name"`
	PartnerType    string  `json:"partner_type"`
	PartnerCode    string  `json:"partner_code"`
	ProvinceCode   string  `json:"province_code"`
	TotalProtocols int     `json:"total_protocols"`
	UsedProtocols  int     `json:"used_protocols"`
	UsageRate      float64 `json:"usage_rate"`
}

// ProvincePerformance aggregates protocol outcomes per province.
type ProvincePerformance struct {
	ProvinceCode   string  `json:"province_code"`
	Count          int     `json:"count"`
	Created        int     `json:"created"`
	Delivered      int     `json:"delivered"`
	Used           int     `json:"terpakai"`
	UsageRate      float64 `json:"usage_rate"`
	ActivePartners int     `json:"active_partners"`
}

// AnalyticsMetrics carries whole-history aggregate figures.
type AnalyticsMetrics struct {
	TotalProtocols  int       `json:"total_protocols"`
	UniqueProvinces int       `json:"unique_provinces"`
	ActivePartners  int       `json:"active_partners"`
	AvgPerDay       float64   `json:"avg_per_day"`
	CompletionRate  float64   `json:"completion_rate"`
	FirstProtocol   time.Time `json:"first_protocol,omitzero"`
	LatestProtocol  time.Time `json:"latest_protocol,omitzero"`
}

// Analytics bundles the dashboard analytics payload.
type Analytics struct {
	DailyTrends         []DailyTrend          `json:"daily_trends"`
	PartnerPerformance  []PartnerPerformance  `json:"partner_performance"`
	ProvincePerformance []ProvincePerformance `json:"province_performance"`
	Metrics             AnalyticsMetrics      `json:"metrics"`
}

// DailySnapshot is one persisted analytics_daily row, written by the
// nightly scheduler.
type DailySnapshot struct {
	Date           string    `json:"date"`
	TotalProtocols int       `json:"total_protocols"`
	CreatedCount   int       `json:"created_count"`
	DeliveredCount int       `json:"delivered_count"`
	UsedCount      int       `json:"terpakai_count"`
	ScanCount      int       `json:"scan_count"`
	CreatedAt      time.Time `json:"created_at"`
}
