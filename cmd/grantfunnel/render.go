package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/tendant/grantfunnel/pkg/directory"
	"github.com/tendant/grantfunnel/pkg/domain"
	"github.com/tendant/grantfunnel/pkg/funnel"
)

// columnWidth fits a full entry ID on one line.
const columnWidth = 40

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#101F38"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935"))

	columnStyle = lipgloss.NewStyle().
			Width(columnWidth).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#dce0e5")).
			Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			Width(columnWidth-2).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(lipgloss.Color("#e5e7eb"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...)
}

// renderOrganizations renders a page of organizations as a table.
func renderOrganizations(orgs []domain.Organization) string {
	t := newTable("ID", "Name", "Registry", "External ID", "Location")
	for _, o := range orgs {
		t.Row(o.ID, o.Name, domain.Deref(o.Registry), domain.Deref(o.ExternalID), o.Location())
	}
	return t.String()
}

// renderOrganizationList renders a page with its paging footer.
func renderOrganizationList(list *directory.List) string {
	if len(list.Organizations) == 0 {
		return "No organizations found.\n"
	}

	var b strings.Builder
	b.WriteString(renderOrganizations(list.Organizations))
	b.WriteString("\n")

	first := list.Offset + 1
	last := list.Offset + len(list.Organizations)
	if list.CountErr != nil {
		fmt.Fprintf(&b, "Showing %d-%d (total unavailable: %v)\n", first, last, list.CountErr)
	} else {
		fmt.Fprintf(&b, "Showing %d-%d of %d\n", first, last, list.Total)
	}
	if list.HasNext() {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("Next page: --offset %d", list.Offset+list.Limit)))
		b.WriteString("\n")
	}
	return b.String()
}

// renderDetail renders an organization with both grant sections.
func renderDetail(d *directory.Detail) string {
	var b strings.Builder
	o := d.Organization
	b.WriteString(headerStyle.Render(o.Name))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Registry: %s  ID: %s\n", orDash(domain.Deref(o.Registry)), orDash(domain.Deref(o.ExternalID)))
	fmt.Fprintf(&b, "Location: %s\n", orDash(o.Location()))
	if o.Website != nil && *o.Website != "" {
		fmt.Fprintf(&b, "Website:  %s\n", *o.Website)
	}

	for _, s := range []struct {
		title   string
		section directory.GrantSection
	}{
		{"Grants Given", d.Given},
		{"Grants Received", d.Received},
	} {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render(fmt.Sprintf("%s (%d)", s.title, len(s.section.Grants))))
		b.WriteString("\n")
		b.WriteString(renderGrantSection(s.section))
	}
	return b.String()
}

func renderGrantSection(s directory.GrantSection) string {
	if s.Err != nil {
		return errorStyle.Render("Could not load grants: "+s.Err.Error()) + "\n"
	}
	if len(s.Grants) == 0 {
		return mutedStyle.Render(s.Empty()) + "\n"
	}
	t := newTable(s.Counterpart(), "Amount", "Year", "Source")
	for _, row := range s.Rows() {
		source := domain.Deref(row.Grant.Source)
		if source == "" {
			source = "N/A"
		}
		t.Row(row.OtherOrgID, domain.FormatAmount(row.Grant.Amount), domain.FormatYear(row.Grant.Year), source)
	}
	return t.String() + "\n"
}

// renderTenants renders the tenant list.
func renderTenants(tenants []domain.Tenant) string {
	if len(tenants) == 0 {
		return "No tenants yet. Create one with: grantfunnel tenants create <name>\n"
	}
	t := newTable("ID", "Name", "Slug", "Created")
	for _, tn := range tenants {
		t.Row(tn.ID, tn.Name, tn.Slug, tn.CreatedAt.Format("2006-01-02"))
	}
	return t.String() + "\n"
}

// renderBoard renders the funnel columns side by side.
func renderBoard(columns []funnel.Column) string {
	rendered := make([]string, 0, len(columns))
	for _, col := range columns {
		rendered = append(rendered, renderColumn(col))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...) + "\n"
}

func renderColumn(col funnel.Column) string {
	parts := []string{headerStyle.Render(col.Label + " (" + strconv.Itoa(col.Count()) + ")")}
	if len(col.Cards) == 0 {
		parts = append(parts, mutedStyle.Render("No entries"))
	}
	for _, card := range col.Cards {
		lines := []string{card.OrgName()}
		if card.Org != nil {
			if loc := card.Org.ShortLocation(); loc != "" {
				lines = append(lines, mutedStyle.Render(loc))
			}
		}
		lines = append(lines, mutedStyle.Render(card.Entry.ID))
		parts = append(parts, cardStyle.Render(strings.Join(lines, "\n")))
	}
	return columnStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// renderSearchResults renders organizations found for adding to a funnel.
func renderSearchResults(query string, orgs []domain.Organization) string {
	if len(orgs) == 0 {
		return fmt.Sprintf("No organizations match %q.\n", query)
	}
	t := newTable("ID", "Name", "Location")
	for _, o := range orgs {
		t.Row(o.ID, o.Name, o.ShortLocation())
	}
	return t.String() + "\n"
}

func orDash(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
