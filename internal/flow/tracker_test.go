package flow

import (
	"testing"

	"thalia/internal/model"
)

func intPtr(n int) *int { return &n }

func TestNewTrackerStartsEmpty(t *testing.T) {
	tr := NewTracker()

	if tr.IsComplete() {
		t.Fatal("fresh tracker reported complete")
	}
	missing := tr.MissingSymptoms("")
	if len(missing) != 11 {
		t.Fatalf("missing = %d symptoms, want 11", len(missing))
	}
	// Priority order: somatic symptoms come first.
	if missing[0] != model.SymptomHotFlashes {
		t.Errorf("first missing symptom = %s, want %s", missing[0], model.SymptomHotFlashes)
	}

	progress := tr.Progress()
	if progress.Total.Addressed != 0 || progress.Total.Total != 11 {
		t.Errorf("progress = %d/%d, want 0/11", progress.Total.Addressed, progress.Total.Total)
	}
}

func TestNextBundleSameDomainAndBounded(t *testing.T) {
	tr := NewTracker()

	bundle, domain := tr.NextBundle(2)
	if len(bundle) != 2 {
		t.Fatalf("bundle size = %d, want 2", len(bundle))
	}
	if domain != model.DomainSomatic {
		t.Errorf("bundle domain = %s, want somatic", domain)
	}
	for _, symptom := range bundle {
		d, ok := model.DomainOf(symptom)
		if !ok || d != domain {
			t.Errorf("symptom %s not in bundle domain %s", symptom, domain)
		}
	}
}

func TestNextBundleAdvancesByDomainPriority(t *testing.T) {
	tr := NewTracker()

	// Address all somatic symptoms.
	var scored []ScoredSymptom
	for _, symptom := range model.Catalog[model.DomainSomatic] {
		scored = append(scored, ScoredSymptom{Symptom: symptom, MRSScore: 1})
	}
	tr.Update(nil, scored)

	_, domain := tr.NextBundle(2)
	if domain != model.DomainPsychological {
		t.Errorf("next domain = %s, want psychological", domain)
	}

	// Bundle never crosses domain boundaries even when fewer than max remain.
	for _, symptom := range model.Catalog[model.DomainPsychological] {
		tr.Update(nil, []ScoredSymptom{{Symptom: symptom, MRSScore: 2}})
	}
	tr.Update(nil, []ScoredSymptom{
		{Symptom: model.SymptomSexualProblems, MRSScore: 1},
		{Symptom: model.SymptomBladderProblems, MRSScore: 1},
	})
	bundle, domain := tr.NextBundle(2)
	if domain != model.DomainUrogenital || len(bundle) != 1 || bundle[0] != model.SymptomVaginalDryness {
		t.Errorf("final bundle = %v in %s, want [vaginal_dryness] in urogenital", bundle, domain)
	}
}

func TestNextBundleEmptyWhenComplete(t *testing.T) {
	tr := NewTracker()
	tr.Update(model.AllSymptoms(), nil)

	if !tr.IsComplete() {
		t.Fatal("tracker not complete after addressing every symptom")
	}
	bundle, domain := tr.NextBundle(2)
	if len(bundle) != 0 || domain != "" {
		t.Errorf("NextBundle on complete tracker = %v, %q", bundle, domain)
	}
}

func TestUpdateScoresAndDefaultsToZero(t *testing.T) {
	tr := NewTracker()

	asked := []model.Symptom{model.SymptomHotFlashes, model.SymptomHeartDiscomfort}
	tr.Update(asked, []ScoredSymptom{{Symptom: model.SymptomHotFlashes, MRSScore: 3}})

	record, _ := tr.Record(model.SymptomHotFlashes)
	if !record.IsAddressed || record.MRSScore == nil || *record.MRSScore != 3 {
		t.Errorf("hot_flashes record = %+v, want addressed with score 3", record)
	}

	// Asked but not scored: read as symptom absent.
	record, _ = tr.Record(model.SymptomHeartDiscomfort)
	if !record.IsAddressed || record.MRSScore == nil || *record.MRSScore != 0 {
		t.Errorf("heart_discomfort record = %+v, want addressed with score 0", record)
	}

	// Not asked, not scored: untouched.
	record, _ = tr.Record(model.SymptomAnxiety)
	if record.IsAddressed || record.MRSScore != nil {
		t.Errorf("anxiety record = %+v, want unaddressed", record)
	}
}

func TestUpdateIgnoresUnknownSymptoms(t *testing.T) {
	tr := NewTracker()
	tr.Update([]model.Symptom{"made_up"}, []ScoredSymptom{{Symptom: "also_made_up", MRSScore: 2}})

	if got := len(tr.MissingSymptoms("")); got != 11 {
		t.Errorf("missing after unknown-symptom update = %d, want 11", got)
	}
}

func TestUpdateVolunteersOutsideAskedBundle(t *testing.T) {
	tr := NewTracker()

	// The user answers a somatic question but volunteers a psychological
	// symptom; both are recorded.
	asked := []model.Symptom{model.SymptomHotFlashes}
	tr.Update(asked, []ScoredSymptom{
		{Symptom: model.SymptomHotFlashes, MRSScore: 2},
		{Symptom: model.SymptomAnxiety, MRSScore: 4},
	})

	record, _ := tr.Record(model.SymptomAnxiety)
	if !record.IsAddressed || record.MRSScore == nil || *record.MRSScore != 4 {
		t.Errorf("volunteered anxiety record = %+v, want addressed with score 4", record)
	}
}

func TestZeroScoredCatalogOrder(t *testing.T) {
	tr := NewTracker()
	tr.Update(nil, []ScoredSymptom{
		{Symptom: model.SymptomVaginalDryness, MRSScore: 0},
		{Symptom: model.SymptomHotFlashes, MRSScore: 0},
		{Symptom: model.SymptomAnxiety, MRSScore: 2},
		{Symptom: model.SymptomIrritability, MRSScore: 0},
	})

	zeros := tr.ZeroScored()
	want := []model.Symptom{model.SymptomHotFlashes, model.SymptomIrritability, model.SymptomVaginalDryness}
	if len(zeros) != len(want) {
		t.Fatalf("zeros = %v, want %v", zeros, want)
	}
	for i := range want {
		if zeros[i] != want[i] {
			t.Errorf("zeros[%d] = %s, want %s", i, zeros[i], want[i])
		}
	}
}

func TestExportIsDeepCopy(t *testing.T) {
	tr := NewTracker()
	tr.Update(nil, []ScoredSymptom{{Symptom: model.SymptomHotFlashes, MRSScore: 3}})

	exported := tr.Export()
	record := exported[model.DomainSomatic][model.SymptomHotFlashes]
	*record.MRSScore = 1

	current, _ := tr.Record(model.SymptomHotFlashes)
	if *current.MRSScore != 3 {
		t.Errorf("mutating export changed tracker score to %d", *current.MRSScore)
	}
}

func TestImportOverlaysAndIgnoresUnknowns(t *testing.T) {
	tr := NewTracker()
	tr.Import(model.TrackerExport{
		model.DomainSomatic: {
			model.SymptomHotFlashes: {MRSScore: intPtr(2), IsAddressed: true},
			"bogus_symptom":         {MRSScore: intPtr(4), IsAddressed: true},
		},
		"bogus_domain": {
			model.SymptomAnxiety: {MRSScore: intPtr(4), IsAddressed: true},
		},
	})

	record, _ := tr.Record(model.SymptomHotFlashes)
	if !record.IsAddressed || record.MRSScore == nil || *record.MRSScore != 2 {
		t.Errorf("imported record = %+v, want addressed with score 2", record)
	}
	record, _ = tr.Record(model.SymptomAnxiety)
	if record.IsAddressed {
		t.Error("unknown-domain import leaked into anxiety record")
	}
}

func TestProgressCountsScoredAndAddressed(t *testing.T) {
	tr := NewTracker()
	tr.Update(
		[]model.Symptom{model.SymptomHotFlashes, model.SymptomHeartDiscomfort},
		[]ScoredSymptom{{Symptom: model.SymptomHotFlashes, MRSScore: 3}},
	)

	progress := tr.Progress()
	if progress.Total.Addressed != 2 {
		t.Errorf("addressed = %d, want 2", progress.Total.Addressed)
	}
	if progress.Total.Scored != 2 {
		t.Errorf("scored = %d, want 2 (defaulted zero counts as scored)", progress.Total.Scored)
	}
	somatic := progress.ByDomain[model.DomainSomatic]
	if somatic.Addressed != 2 || somatic.Total != 4 {
		t.Errorf("somatic progress = %d/%d, want 2/4", somatic.Addressed, somatic.Total)
	}
	if progress.IsComplete {
		t.Error("progress reported complete with 9 symptoms outstanding")
	}
}
