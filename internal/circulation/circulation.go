package circulation

// SystemStats is the admin dashboard snapshot.
type SystemStats struct {
	TotalUsers        int64 `json:"total_users"`
	TodayTransactions int64 `json:"today_transactions"`
	ActiveDepartments int64 `json:"active_departments"`
	TotalCirculation  int64 `json:"total_circulation"`
}

type CirculationResponse struct {
	TotalCirculation int64 `json:"total_circulation"`
	Pinned           bool  `json:"pinned"`
}
