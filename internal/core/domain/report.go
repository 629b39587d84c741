package domain

// Report is the tabular detail section of a CRM analytics report.
type Report struct {
	Columns []ReportColumn
	Rows    [][]ReportCell
}

// ReportColumn describes one detail column.
type ReportColumn struct {
	Name     string
	Label    string
	DataType string
}

// ReportCell is one detail value with its display label.
type ReportCell struct {
	Value any
	Label string
}

// IsTemporal reports whether the column holds a date or datetime.
func (c ReportColumn) IsTemporal() bool {
	switch c.DataType {
	case "date", "datetime", "DATE_DATA", "DATETIME_DATA":
		return true
	default:
		return false
	}
}
