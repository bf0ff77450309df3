package flow

import (
	"thalia/internal/model"
)

// Tracker owns the mutable table of symptom records for one assessment.
// Every catalog symptom has exactly one record for the tracker's lifetime;
// the whole table is replaced on session reset, records are never deleted
// individually.
type Tracker struct {
	records map[model.Domain]map[model.Symptom]*model.Record
}

// ScoredSymptom is one explicit severity extracted from a user reply.
type ScoredSymptom struct {
	Symptom  model.Symptom `json:"symptom"`
	MRSScore int           `json:"mrs_score"`
}

// NewTracker creates a table with all eleven symptoms unset and unaddressed.
func NewTracker() *Tracker {
	t := &Tracker{records: make(map[model.Domain]map[model.Symptom]*model.Record)}
	for domain, symptoms := range model.Catalog {
		t.records[domain] = make(map[model.Symptom]*model.Record, len(symptoms))
		for _, symptom := range symptoms {
			t.records[domain][symptom] = &model.Record{}
		}
	}
	return t
}

// MissingSymptoms returns the symptoms not yet addressed, in catalog order.
// An empty domain scans all domains in priority order.
func (t *Tracker) MissingSymptoms(domain model.Domain) []model.Symptom {
	domains := model.DomainPriority
	if domain != "" {
		domains = []model.Domain{domain}
	}

	var missing []model.Symptom
	for _, d := range domains {
		for _, symptom := range model.Catalog[d] {
			if record, ok := t.records[d][symptom]; ok && !record.IsAddressed {
				missing = append(missing, symptom)
			}
		}
	}
	return missing
}

// NextBundle returns up to max missing symptoms from the first domain, in
// priority order, that still has any. It returns ([], "") when the
// assessment is complete. Bundled symptoms always share a domain.
func (t *Tracker) NextBundle(max int) ([]model.Symptom, model.Domain) {
	for _, domain := range model.DomainPriority {
		missing := t.MissingSymptoms(domain)
		if len(missing) > 0 {
			if len(missing) > max {
				missing = missing[:max]
			}
			return missing, domain
		}
	}
	return nil, ""
}

// IsComplete reports whether every symptom has been addressed.
func (t *Tracker) IsComplete() bool {
	for _, domainRecords := range t.records {
		for _, record := range domainRecords {
			if !record.IsAddressed {
				return false
			}
		}
	}
	return true
}

// Update applies one collection result. Every scored symptom gets its score
// and is marked addressed; every asked symptom left unscored is defaulted to
// zero (absence of an explicit score for an asked symptom is read as the
// user reporting no symptom). Symptoms outside the catalog are ignored.
func (t *Tracker) Update(asked []model.Symptom, scored []ScoredSymptom) {
	scoredNames := make(map[model.Symptom]bool, len(scored))
	for _, item := range scored {
		domain, ok := model.DomainOf(item.Symptom)
		if !ok {
			continue
		}
		score := item.MRSScore
		record := t.records[domain][item.Symptom]
		record.MRSScore = &score
		record.IsAddressed = true
		scoredNames[item.Symptom] = true
	}

	for _, symptom := range asked {
		if scoredNames[symptom] {
			continue
		}
		domain, ok := model.DomainOf(symptom)
		if !ok {
			continue
		}
		zero := 0
		record := t.records[domain][symptom]
		record.MRSScore = &zero
		record.IsAddressed = true
	}
}

// ZeroScored returns, in catalog order, every symptom whose score is exactly
// zero. Used for the batched zero-confirmation step before scoring.
func (t *Tracker) ZeroScored() []model.Symptom {
	var zeros []model.Symptom
	for _, domain := range model.DomainPriority {
		for _, symptom := range model.Catalog[domain] {
			record := t.records[domain][symptom]
			if record.MRSScore != nil && *record.MRSScore == 0 {
				zeros = append(zeros, symptom)
			}
		}
	}
	return zeros
}

// Record returns a copy of one symptom's record.
func (t *Tracker) Record(symptom model.Symptom) (model.Record, bool) {
	domain, ok := model.DomainOf(symptom)
	if !ok {
		return model.Record{}, false
	}
	return *t.records[domain][symptom], true
}

// Progress computes completion statistics overall and per domain.
func (t *Tracker) Progress() model.ProgressReport {
	report := model.ProgressReport{
		ByDomain: make(map[model.Domain]model.DomainProgress, len(t.records)),
	}

	for domain, domainRecords := range t.records {
		dp := model.DomainProgress{Total: len(domainRecords)}
		for _, record := range domainRecords {
			if record.IsAddressed {
				dp.Addressed++
				report.Total.Addressed++
			}
			if record.MRSScore != nil {
				report.Total.Scored++
			}
			report.Total.Total++
		}
		if dp.Total > 0 {
			dp.Percentage = float64(dp.Addressed) / float64(dp.Total) * 100
		}
		report.ByDomain[domain] = dp
	}

	if report.Total.Total > 0 {
		report.Total.Percentage = float64(report.Total.Addressed) / float64(report.Total.Total) * 100
	}
	report.IsComplete = t.IsComplete()
	return report
}

// Export returns a full copy of the records table.
func (t *Tracker) Export() model.TrackerExport {
	out := make(model.TrackerExport, len(t.records))
	for domain, domainRecords := range t.records {
		out[domain] = make(map[model.Symptom]model.Record, len(domainRecords))
		for symptom, record := range domainRecords {
			copied := model.Record{IsAddressed: record.IsAddressed}
			if record.MRSScore != nil {
				score := *record.MRSScore
				copied.MRSScore = &score
			}
			out[domain][symptom] = copied
		}
	}
	return out
}

// Import overlays previously exported data onto the table. Unknown domains
// and symptoms are ignored; symptoms missing from data keep their current
// state.
func (t *Tracker) Import(data model.TrackerExport) {
	for domain, domainData := range data {
		domainRecords, ok := t.records[domain]
		if !ok {
			continue
		}
		for symptom, imported := range domainData {
			record, ok := domainRecords[symptom]
			if !ok {
				continue
			}
			if imported.MRSScore != nil {
				score := *imported.MRSScore
				record.MRSScore = &score
			} else {
				record.MRSScore = nil
			}
			record.IsAddressed = imported.IsAddressed
		}
	}
}
