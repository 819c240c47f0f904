package models

import "time"

// Date format choices for presentation.
const (
	DateFormatISO = "YYYY-MM-DD"
	DateFormatUS  = "MM/DD/YYYY"
	DateFormatEU  = "DD/MM/YYYY"
)

// Settings are the presentation preferences kept in the settings document.
// swagger:model Settings
type Settings struct {
	CurrencySymbol string `json:"currency_symbol" validate:"required,max=8"`
	DateFormat     string `json:"date_format" validate:"oneof=YYYY-MM-DD MM/DD/YYYY DD/MM/YYYY"`
	Theme          string `json:"theme" validate:"oneof=light dark"`
	RecordsPerPage int    `json:"records_per_page" validate:"min=5,max=100"`
	ShowCharts     bool   `json:"show_charts"`
}

// DefaultSettings returns the documented defaults.
func DefaultSettings() Settings {
	return Settings{
		CurrencySymbol: "$",
		DateFormat:     DateFormatISO,
		Theme:          "light",
		RecordsPerPage: 10,
		ShowCharts:     true,
	}
}

// DateLayout maps DateFormat to a Go time layout.
func (s Settings) DateLayout() string {
	switch s.DateFormat {
	case DateFormatUS:
		return "01/02/2006"
	case DateFormatEU:
		return "02/01/2006"
	default:
		return "2006-01-02"
	}
}

// BackupInfo describes one snapshot file.
// swagger:model BackupInfo
type BackupInfo struct {
	Name      string    `json:"name"`
	Path      string    `json:"file"`
	Size      string    `json:"size"`
	SizeBytes int64     `json:"size_bytes"`
	Created   time.Time `json:"created"`
}

// DatabaseInfo describes the live database file.
// swagger:model DatabaseInfo
type DatabaseInfo struct {
	Path        string     `json:"path"`
	Size        string     `json:"size"`
	Modified    *time.Time `json:"modified"`
	RecordCount int        `json:"record_count"`
}

// SystemInfo is shown on the settings page.
// swagger:model SystemInfo
type SystemInfo struct {
	GoVersion     string `json:"go_version"`
	SQLiteVersion string `json:"sqlite_version"`
	OS            string `json:"os"`
}
