package leave

// LeaveDraft is the employee-editable part of a request. Form tags let the
// same struct bind from multipart uploads.
type LeaveDraft struct {
	LeaveType    string `json:"leave_type" form:"leave_type" binding:"required"`
	StartDate    string `json:"start_date" form:"start_date" binding:"required"`
	EndDate      string `json:"end_date" form:"end_date" binding:"required"`
	NumberOfDays int    `json:"number_of_days" form:"number_of_days" binding:"omitempty,min=1"`
	ReasonNotes  string `json:"reason_notes" form:"reason_notes" binding:"required"`
}

type EditLeaveRequest struct {
	LeaveDraft
	// RemoveDocuments are indexes into the current supporting documents.
	RemoveDocuments []int `json:"remove_documents" form:"remove_documents"`
}

type DecisionRequest struct {
	Decision string `json:"decision" binding:"required,oneof=approve reject"`
	Comments string `json:"comments" binding:"max=1000"`
}

type CancelLeaveRequest struct {
	Reason string `json:"reason" binding:"max=1000"`
}

type ApprovalResponse struct {
	Status         string  `json:"status"`
	ApprovedBy     *string `json:"approved_by"`
	ApprovedByName *string `json:"approved_by_name"`
	ApprovedAt     *string `json:"approved_at"`
	Comments       *string `json:"comments"`
}

type DocumentResponse struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	ContentType string `json:"content_type,omitempty"`
	UploadedAt  string `json:"uploaded_at"`
}

// DocumentContent is a supporting document read back for download.
type DocumentContent struct {
	Name        string
	ContentType string
	Content     []byte
}

type LeaveResponse struct {
	ID                  string             `json:"id"`
	EmployeeID          string             `json:"employee_id"`
	EmployeeName        string             `json:"employee_name"`
	EmployeeEmail       string             `json:"employee_email"`
	Department          string             `json:"department"`
	Designation         string             `json:"designation,omitempty"`
	LeaveType           string             `json:"leave_type"`
	LeaveTypeText       string             `json:"leave_type_text"`
	StartDate           string             `json:"start_date"`
	EndDate             string             `json:"end_date"`
	NumberOfDays        int                `json:"number_of_days"`
	ReasonNotes         string             `json:"reason_notes"`
	Status              string             `json:"status"`
	StatusText          string             `json:"status_text"`
	SupervisorApproval  ApprovalResponse   `json:"supervisor_approval"`
	HRApproval          ApprovalResponse   `json:"hr_approval"`
	SupportingDocuments []DocumentResponse `json:"supporting_documents"`
	CancellationReason  *string            `json:"cancellation_reason,omitempty"`
	CancelledAt         *string            `json:"cancelled_at,omitempty"`
	CreatedAt           string             `json:"created_at"`
	UpdatedAt           string             `json:"updated_at"`
}
