package credit

type AllotRequest struct {
	Days *int `json:"days" binding:"required,min=0,max=366"`
}

type CreditResponse struct {
	Bucket    string `json:"bucket"`
	Days      int    `json:"days"`
	Used      int    `json:"used"`
	Remaining int    `json:"remaining"`
}

type BalancesResponse struct {
	EmployeeID string           `json:"employee_id"`
	Credits    []CreditResponse `json:"credits"`
}
