package report

// ExportQuery narrows the export. Dates select requests whose leave period
// overlaps [From, To].
type ExportQuery struct {
	From       string `form:"from"`
	To         string `form:"to"`
	Department string `form:"department"`
	Status     string `form:"status"`
}

// Export is a finished workbook.
type Export struct {
	FileName string
	Rows     int
	Content  []byte
}
