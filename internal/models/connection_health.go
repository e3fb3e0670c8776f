package models

// Status values reported by ConnectionHealth
const (
	HealthStatusSuccess = "success"
	HealthStatusDanger  = "danger"
)

// Icons shown for the daemon connection
const (
	IconConnected    = "checkmark-square-outline"
	IconDisconnected = "close-square-outline"
)

// ConnectionHealth describes the last known liveness of the activity daemon
type ConnectionHealth struct {
	Enabled bool   `json:"enabled"`
	Alive   bool   `json:"alive"`
	Icon    string `json:"icon"`
	Status  string `json:"status"`
	Message string `json:"message"`
}
