package services

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/Praveen5612/skill-survey-bot/internal/store"
)

func gapFixture(t *testing.T) (*GapService, *stubStore, *store.Survey) {
	t.Helper()
	st := newStubStore()
	sv := &store.Survey{
		ID:             "s1",
		ProcessName:    "Order to Cash",
		RequiredSkills: []string{"SAP SD", "Excel", "Invoicing"},
		CreatedAt:      time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	if err := st.InsertSurvey(sv); err != nil {
		t.Fatal(err)
	}
	return NewGapService(st), st, sv
}

func addGapResponse(t *testing.T, st *stubStore, userID string, selected []string, ratings map[string]store.Rating) {
	t.Helper()
	err := st.UpsertResponse(&store.Response{
		SurveyID:       "s1",
		UserID:         userID,
		SelectedSkills: selected,
		SkillRatings:   ratings,
		SubmittedAt:    time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestAggregateRatings(t *testing.T) {
	svc, st, _ := gapFixture(t)
	addGapResponse(t, st, "u1", []string{"SAP SD"}, map[string]store.Rating{"SAP SD": store.RatingHigh})
	addGapResponse(t, st, "u2", []string{"SAP SD", "Excel"}, map[string]store.Rating{
		"SAP SD": store.RatingMedium,
		"Excel":  store.RatingLow,
	})

	got, err := svc.AggregateRatings("s1")
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]RatingCounts{
		"SAP SD": {High: 1, Medium: 1, Total: 2},
		"Excel":  {Low: 1, Total: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ratings = %+v, want %+v", got, want)
	}
	// Invoicing was never rated and must not appear with zero counts.
	if _, ok := got["Invoicing"]; ok {
		t.Fatal("unrated skill reported")
	}
}

func TestAvailableSkillsSortedUnion(t *testing.T) {
	svc, st, _ := gapFixture(t)
	addGapResponse(t, st, "u1", []string{"Excel", "SAP SD"}, nil)
	addGapResponse(t, st, "u2", []string{"SAP SD"}, nil)

	got, err := svc.AvailableSkills("s1")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{"Excel", "SAP SD"}) {
		t.Fatalf("available = %v", got)
	}
}

func TestMissingSkills(t *testing.T) {
	svc, st, _ := gapFixture(t)
	addGapResponse(t, st, "u1", []string{"SAP SD"}, nil)

	got, err := svc.MissingSkills("s1")
	if err != nil {
		t.Fatal(err)
	}
	// Required order preserved, not sorted.
	if !reflect.DeepEqual(got, []string{"Excel", "Invoicing"}) {
		t.Fatalf("missing = %v", got)
	}
}

func TestMissingSkillsIsCaseSensitive(t *testing.T) {
	svc, st, _ := gapFixture(t)
	addGapResponse(t, st, "u1", []string{"sap sd"}, nil)

	got, err := svc.MissingSkills("s1")
	if err != nil {
		t.Fatal(err)
	}
	// "sap sd" does not cover "SAP SD"; there is no fuzzy matching.
	if !reflect.DeepEqual(got, []string{"SAP SD", "Excel", "Invoicing"}) {
		t.Fatalf("missing = %v", got)
	}
}

func TestMissingSkillsNoResponses(t *testing.T) {
	svc, _, sv := gapFixture(t)
	got, err := svc.MissingSkills("s1")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, sv.RequiredSkills) {
		t.Fatalf("missing = %v, want all required", got)
	}
}

func TestMissingSkillsEmptyRequired(t *testing.T) {
	st := newStubStore()
	if err := st.InsertSurvey(&store.Survey{ID: "s2"}); err != nil {
		t.Fatal(err)
	}
	addGapResponse(t, st, "u1", []string{"Anything"}, nil)

	got, err := NewGapService(st).MissingSkills("s2")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("missing = %v, want none", got)
	}
}

func TestGapSummary(t *testing.T) {
	svc, st, _ := gapFixture(t)
	addGapResponse(t, st, "u1", []string{"SAP SD"}, map[string]store.Rating{"SAP SD": store.RatingHigh})
	addGapResponse(t, st, "u2", []string{"Excel"}, nil)

	sum, err := svc.Summary("s1")
	if err != nil {
		t.Fatal(err)
	}
	if sum.TotalResponses != 2 {
		t.Fatalf("total = %d", sum.TotalResponses)
	}
	if !reflect.DeepEqual(sum.AvailableSkills, []string{"Excel", "SAP SD"}) {
		t.Fatalf("available = %v", sum.AvailableSkills)
	}
	if !reflect.DeepEqual(sum.MissingSkills, []string{"Invoicing"}) {
		t.Fatalf("missing = %v", sum.MissingSkills)
	}
	if sum.Ratings["SAP SD"].High != 1 {
		t.Fatalf("ratings = %+v", sum.Ratings)
	}
}

func TestGapUnknownSurvey(t *testing.T) {
	svc, _, _ := gapFixture(t)
	if _, err := svc.Summary("nope"); !errors.Is(err, ErrUnknownSurvey) {
		t.Fatalf("expected ErrUnknownSurvey, got %v", err)
	}
	if _, err := svc.AggregateRatings("nope"); !errors.Is(err, ErrUnknownSurvey) {
		t.Fatalf("expected ErrUnknownSurvey, got %v", err)
	}
}
