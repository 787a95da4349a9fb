package constants

const (
	DeptSoftwareDev = "software-dev"
	DeptHR          = "hr"
	DeptFinance     = "finance"
	DeptOperations  = "operations"
	DeptTraining    = "training"
	DeptNone        = ""
)

var departmentLabels = map[string]string{
	DeptSoftwareDev: "Software Development",
	DeptHR:          "HR",
	DeptFinance:     "Finance",
	DeptOperations:  "Operations",
	DeptTraining:    "Training & Development",
	DeptNone:        "Not Specified",
}

func IsValidDepartment(d string) bool {
	_, ok := departmentLabels[d]
	return ok
}

func DepartmentLabel(d string) string {
	if l, ok := departmentLabels[d]; ok {
		return l
	}
	return d
}

// Work modes on an approved employee record
const (
	WorkModeRemote = "Remote"
	WorkModeOnsite = "Onsite"
	WorkModeHybrid = "Hybrid"
)
