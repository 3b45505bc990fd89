package rbac

type EnforceRequest struct {
	Role     string `json:"role"`
	Resource string `json:"resource"`
	Action   string `json:"action"`
}

// Policy is one allow rule: Role may perform Action on Resource.
type Policy struct {
	Role     string
	Resource string
	Action   string
}
