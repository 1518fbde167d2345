package model

// InfeasibilityReason is one quick-analysis explanation surfaced when a
// solve comes back INFEASIBLE. Different reason codes populate different
// optional fields; Code and Message are always present.
type InfeasibilityReason struct {
	Code    string `json:"code"`
	Message string `json:"message"`

	Shift          *ShiftMeta `json:"shift,omitempty"`
	EmployeeNames  string     `json:"employee_names,omitempty"`
	EmployeeID     string     `json:"employee_id,omitempty"`
	EmployeeName   string     `json:"employee_name,omitempty"`

	HardRequiredCount   *int `json:"hard_required_count,omitempty"`
	RequiredCoverage    *int `json:"required_coverage,omitempty"`
	AvailableEmployees  *int `json:"available_employees,omitempty"`
	RequiredAssignments *int `json:"required_assignments,omitempty"`
	AllowedAssignments  *int `json:"allowed_assignments,omitempty"`
	WindowPreview       string `json:"window_preview,omitempty"`

	LeftShift    *ShiftMeta `json:"left_shift,omitempty"`
	RightShift   *ShiftMeta `json:"right_shift,omitempty"`
	RestHours    *float64   `json:"rest_hours,omitempty"`
	MinRestHours *int       `json:"min_rest_hours,omitempty"`
}
