package search

import "fmt"

// SummaryBuilder renders matches of one entity kind into display results.
// Dispatch is by the match's kind tag, never by inspecting the match shape.
type SummaryBuilder interface {
	Kind() Kind
	Build(m Match) Result
}

// DefaultBuilders returns a builder for every indexed entity kind.
func DefaultBuilders() []SummaryBuilder {
	return []SummaryBuilder{
		officerSummary{},
		agencySummary{},
		unitSummary{},
	}
}

type officerSummary struct{}

func (officerSummary) Kind() Kind { return KindOfficer }

// Build renders "Rank, Unit, Agency" from the officer's most recent known
// employment join, substituting a literal placeholder for each missing leg.
func (officerSummary) Build(m Match) Result {
	return Result{
		ID:          m.ID,
		Title:       m.Name,
		Subtitle:    fmt.Sprintf("%s, %s, %s", fieldOr(m, "rank", "Unknown rank"), fieldOr(m, "unit_name", "Unknown unit"), fieldOr(m, "agency_name", "Unknown agency")),
		ContentType: KindOfficer,
		Source:      m.Source,
		LastUpdated: m.UpdatedAt,
		Href:        "/officers/" + m.ID,
		Score:       m.Score,
	}
}

type agencySummary struct{}

func (agencySummary) Kind() Kind { return KindAgency }

func (agencySummary) Build(m Match) Result {
	return Result{
		ID:          m.ID,
		Title:       m.Name,
		Subtitle:    fmt.Sprintf("%s, %s", fieldOr(m, "city", "Unknown city"), fieldOr(m, "state", "Unknown state")),
		ContentType: KindAgency,
		Source:      m.Source,
		LastUpdated: m.UpdatedAt,
		Href:        "/agencies/" + m.ID,
		Score:       m.Score,
	}
}

type unitSummary struct{}

func (unitSummary) Kind() Kind { return KindUnit }

func (unitSummary) Build(m Match) Result {
	return Result{
		ID:          m.ID,
		Title:       m.Name,
		Subtitle:    fmt.Sprintf("Unit of %s", fieldOr(m, "agency_name", "Unknown agency")),
		ContentType: KindUnit,
		Source:      m.Source,
		LastUpdated: m.UpdatedAt,
		Href:        "/units/" + m.ID,
		Score:       m.Score,
	}
}

func fieldOr(m Match, key, fallback string) string {
	if v := m.Fields[key]; v != "" {
		return v
	}
	return fallback
}
