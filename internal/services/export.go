package services

import (
	"bytes"
	"encoding/csv"
)

// LongRow is one flattened export line: a skill rating, a question answer
// or a comments entry, identified by the field column.
type LongRow struct {
	SurveyID    string
	UserEmail   string
	Field       string
	Value       string
	SubmittedAt string // RFC3339
}

// ExportLongCSV renders rows into the long-format CSV.
func ExportLongCSV(rows []LongRow) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"survey_id", "user_email", "field", "value", "submitted_at"})
	for _, r := range rows {
		if err := w.Write([]string{r.SurveyID, r.UserEmail, r.Field, r.Value, r.SubmittedAt}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// ExportWideCSV renders one row per response under the given header.
func ExportWideCSV(header []string, records [][]string) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
