// Package catalog loads the read-only business process catalog from a
// tabular file (CSV or XLSX). Processes are loaded once at startup and never
// created or modified by the application.
package catalog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Process is one business process row: a unique name, a description, and the
// skills suggested when building a survey for it.
type Process struct {
	Name            string   `json:"process_name"`
	Description     string   `json:"description"`
	SuggestedSkills []string `json:"suggested_skills"`
}

type Catalog struct {
	processes []*Process
	byName    map[string]*Process
}

// Load reads the catalog at path, dispatching on the file extension
// (.xlsx via excelize, anything else as CSV). A missing file yields an
// empty catalog.
func Load(path string) (*Catalog, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return build(nil), nil
	}
	var rows [][]string
	var err error
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		rows, err = readXLSX(path)
	} else {
		rows, err = readCSV(path)
	}
	if err != nil {
		return nil, fmt.Errorf("load process catalog %s: %w", path, err)
	}
	procs, err := parseRows(rows)
	if err != nil {
		return nil, fmt.Errorf("load process catalog %s: %w", path, err)
	}
	return build(procs), nil
}

func build(procs []*Process) *Catalog {
	c := &Catalog{processes: procs, byName: map[string]*Process{}}
	for _, p := range procs {
		c.byName[p.Name] = p
	}
	return c
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	return f.GetRows(sheets[0])
}

// parseRows expects a header row; columns are matched by normalized name so
// both "ProcessName" and "process_name" styles work.
func parseRows(rows [][]string) ([]*Process, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	idx := map[string]int{}
	for i, h := range rows[0] {
		idx[normalizeHeader(h)] = i
	}
	nameCol, ok := idx["processname"]
	if !ok {
		return nil, fmt.Errorf("missing process_name column")
	}
	descCol, hasDesc := idx["description"]
	skillsCol, hasSkills := idx["suggestedskills"]

	cell := func(row []string, col int) string {
		if col < len(row) {
			return strings.TrimSpace(row[col])
		}
		return ""
	}

	out := []*Process{}
	for _, row := range rows[1:] {
		name := cell(row, nameCol)
		if name == "" {
			continue
		}
		p := &Process{Name: name}
		if hasDesc {
			p.Description = cell(row, descCol)
		}
		if hasSkills {
			p.SuggestedSkills = splitSkills(cell(row, skillsCol))
		}
		if len(p.SuggestedSkills) == 0 {
			p.SuggestedSkills = SuggestSkills(name)
		}
		out = append(out, p)
	}
	return out, nil
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, "_", "")
	h = strings.ReplaceAll(h, " ", "")
	return h
}

func splitSkills(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Get returns the process with the given name, or nil.
func (c *Catalog) Get(name string) *Process { return c.byName[name] }

// List returns all processes in file order.
func (c *Catalog) List() []*Process { return append([]*Process(nil), c.processes...) }

// skillSuggestions maps well-known process names to starter skill lists,
// used when the catalog file carries no suggested_skills column. The admin
// edits the list at survey creation anyway.
var skillSuggestions = []struct {
	process string
	skills  []string
}{
	{"Order to Cash", []string{"Order Processing", "Invoicing", "Accounts Receivable", "SAP"}},
	{"Procure to Pay", []string{"Procurement", "Supplier Management", "PO Processing", "SAP"}},
	{"Hire to Retire", []string{"Recruitment", "Payroll", "Onboarding", "Employee Relations"}},
	{"Record to Report", []string{"Financial Reporting", "Reconcilations", "Excel", "Accounting"}},
	{"Incident Management", []string{"Incident Triage", "Troubleshooting", "Ticketing Systems"}},
	{"Inventory Management", []string{"Stock Control", "Cycle Count", "ERP", "Logistics"}},
	{"Data Migration", []string{"ETL", "Data Mapping", "SQL", "Python"}},
	{"Network Security", []string{"Firewalls", "IDS/IPS", "Vulnerability Management"}},
	{"Event Management", []string{"Venue Management", "Vendor Coordination", "Logistics"}},
}

// SuggestSkills returns starter skills for a process name, matching known
// process names case-insensitively by containment, with a generic fallback.
func SuggestSkills(processName string) []string {
	lower := strings.ToLower(processName)
	for _, s := range skillSuggestions {
		if strings.Contains(lower, strings.ToLower(s.process)) {
			return append([]string(nil), s.skills...)
		}
	}
	return []string{"Communication", "Process Knowledge", "Documentation", "Tools"}
}
