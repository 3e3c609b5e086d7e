package export

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/account-engine/internal/model"
)

// Sheet names, in workbook order.
const (
	SheetOverview     = "Overview"
	SheetAreas        = "Business Areas"
	SheetStakeholders = "Stakeholders"
	SheetMetrics      = "Metrics"
	SheetGaps         = "Gaps"
	SheetNotes        = "Notes"
)

const dateLayout = "2006-01-02"

// Workbook builds a spreadsheet with one sheet per account section.
func Workbook(acct *model.Account) (*xlsx.File, error) {
	f := xlsx.NewFile()
	builders := []struct {
		name string
		fill func(*xlsx.Sheet, *model.Account)
	}{
		{SheetOverview, overviewSheet},
		{SheetAreas, areasSheet},
		{SheetStakeholders, stakeholdersSheet},
		{SheetMetrics, metricsSheet},
		{SheetGaps, gapsSheet},
		{SheetNotes, notesSheet},
	}
	for _, b := range builders {
		sheet, err := f.AddSheet(b.name)
		if err != nil {
			return nil, eris.Wrapf(err, "export: add sheet %s", b.name)
		}
		b.fill(sheet, acct)
	}
	return f, nil
}

func overviewSheet(s *xlsx.Sheet, a *model.Account) {
	header(s, "Field", "Value")
	addRow(s, "Name", a.Name)
	addRow(s, "Stage", string(a.Stage))
	addRow(s, "Vertical", a.Vertical)
	addRow(s, "Ownership", a.Ownership)
	addRow(s, "Salesforce ID", a.SalesforceID)
	addRow(s, "Open Questions", fmt.Sprint(len(a.OpenGaps())))
	addRow(s, "Calls Processed", fmt.Sprint(len(a.Transcripts)))
	addRow(s, "Created", a.CreatedAt.Format(dateLayout))
	addRow(s, "Updated", a.UpdatedAt.Format(dateLayout))
}

func areasSheet(s *xlsx.Sheet, a *model.Account) {
	header(s, "Area", "Priority", "Confidence", "Current State", "Opportunities", "Quotes", "Irrelevant")
	for _, t := range model.Topics {
		area := a.BusinessAreas[t.ID]
		if area == nil {
			continue
		}
		irrelevant := ""
		if area.Irrelevant {
			irrelevant = "yes"
			if area.IrrelevantReason != "" {
				irrelevant += ": " + area.IrrelevantReason
			}
		}
		addRow(s, t.Label, string(area.Priority), string(area.Confidence),
			lines(area.CurrentState), lines(area.Opportunities), lines(area.Quotes), irrelevant)
	}
}

func stakeholdersSheet(s *xlsx.Sheet, a *model.Account) {
	header(s, "Name", "Title", "Department", "Role", "Notes", "Added")
	for _, sh := range a.Stakeholders {
		addRow(s, sh.Name, sh.Title, sh.Department, string(sh.Role), sh.Notes, sh.AddedAt.Format(dateLayout))
	}
}

func metricsSheet(s *xlsx.Sheet, a *model.Account) {
	header(s, "Metric", "Value", "Context")
	seen := map[string]bool{}
	emit := func(id string) {
		m := a.Metrics[id]
		if m == nil || m.Value == nil {
			return
		}
		row := s.AddRow()
		row.AddCell().SetString(model.MetricLabel(id))
		cell := row.AddCell()
		switch v := m.Value.(type) {
		case float64:
			cell.SetFloat(v)
		case int:
			cell.SetInt(v)
		default:
			cell.SetString(fmt.Sprint(v))
		}
		ctx := ""
		if m.Context != nil {
			ctx = *m.Context
		}
		row.AddCell().SetString(ctx)
	}
	for _, id := range model.MetricIDs {
		seen[id] = true
		emit(id)
	}
	for _, id := range slices.Sorted(maps.Keys(a.Metrics)) {
		if !seen[id] {
			emit(id)
		}
	}
}

func gapsSheet(s *xlsx.Sheet, a *model.Account) {
	header(s, "Question", "Category", "MEDDICC", "Status", "Resolution", "Added", "Resolved")
	for _, g := range a.InformationGaps {
		addRow(s, g.Question, g.Category, g.MEDDICCCategory, string(g.Status), g.Resolution,
			g.AddedAt.Format(dateLayout), formatTime(g.ResolvedAt))
	}
}

func notesSheet(s *xlsx.Sheet, a *model.Account) {
	header(s, "Created", "Category", "Content")
	for _, n := range a.Notes {
		addRow(s, n.CreatedAt.Format(dateLayout), n.Category, n.Content)
	}
}

func header(s *xlsx.Sheet, cols ...string) {
	row := s.AddRow()
	for _, c := range cols {
		cell := row.AddCell()
		cell.SetString(c)
		style := xlsx.NewStyle()
		style.Font.Bold = true
		cell.SetStyle(style)
	}
}

func addRow(s *xlsx.Sheet, vals ...string) {
	row := s.AddRow()
	for _, v := range vals {
		row.AddCell().SetString(v)
	}
}

func lines(items []string) string {
	return strings.Join(items, "\n")
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}
