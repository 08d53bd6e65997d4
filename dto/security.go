package dto

import "github.com/raipur-smart-connect/raipur_api/security"

// ==================== SECURITY ADMIN DTOs ====================

type UnblockUserRequest struct {
	Identifier string `json:"identifier" validate:"required" example:"user:usr_123456789"`
}

func (r UnblockUserRequest) Validate() error {
	return GetValidator().Struct(r)
}

type UnblockIPRequest struct {
	IP string `json:"ip" validate:"required,ip" example:"203.0.113.7"`
}

func (r UnblockIPRequest) Validate() error {
	return GetValidator().Struct(r)
}

type SecurityStatsResponse struct {
	TrackedEntries    int                       `json:"tracked_entries"`
	BlockedIdentities int                       `json:"blocked_identities"`
	BlockedIPs        int                       `json:"blocked_ips"`
	Last24hBySeverity map[security.Severity]int `json:"last_24h_by_severity"`
}

type SecurityActivityResponse struct {
	Activity []security.SuspiciousActivity `json:"activity"`
	Count    int                           `json:"count"`
}

type UnblockResponse struct {
	Cleared bool `json:"cleared"`
}
