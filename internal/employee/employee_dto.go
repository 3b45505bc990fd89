package employee

type CreateEmployeeRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Department  string `json:"department" binding:"required"`
	Designation string `json:"designation"`
	Role        string `json:"role" binding:"required,oneof=employee supervisor hr"`
}

type EmployeeResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Department  string `json:"department"`
	Designation string `json:"designation,omitempty"`
	Role        string `json:"role"`
}
