package dto

// UserStatsResponse carries a submitter's own ticket counters.
type UserStatsResponse struct {
	Total      int64 `json:"total"`
	New        int64 `json:"new"`
	InProgress int64 `json:"inProgress"`
	Resolved   int64 `json:"resolved"`
	High       int64 `json:"high"`
}

// AdminStatsResponse carries portal-wide triage counters for an admin.
type AdminStatsResponse struct {
	New               int64  `json:"new"`
	InProgress        int64  `json:"inProgress"`
	High              int64  `json:"high"`
	AssignedToMe      int64  `json:"assignedToMe"`
	AvgResolutionTime string `json:"avgResolutionTime"`
}
