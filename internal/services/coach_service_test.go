package services

import (
	"context"
	"reflect"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/linqiu-w/SwimCoachBack/internal/models"
)

type stubCoachProfileStore struct {
	coaches map[string]*models.Coach
}

func (s *stubCoachProfileStore) GetByID(_ context.Context, id string) (*models.Coach, error) {
	if c, ok := s.coaches[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (s *stubCoachProfileStore) Upsert(_ context.Context, coach *models.Coach) error {
	if s.coaches == nil {
		s.coaches = make(map[string]*models.Coach)
	}
	s.coaches[coach.ID] = coach
	return nil
}

func TestEnsureProfileCreates(t *testing.T) {
	store := &stubCoachProfileStore{}
	svc := NewCoachService(store)

	coach, err := svc.EnsureProfile(context.Background(), "7", "Amber Lee", "amber@pool.example", nil)
	if err != nil {
		t.Fatalf("EnsureProfile: %v", err)
	}
	want := []string{"Amber Lee", "amber@pool.example", "amber"}
	if !reflect.DeepEqual(coach.Aliases, want) {
		t.Fatalf("Aliases = %v, want %v", coach.Aliases, want)
	}
	if store.coaches["7"] == nil {
		t.Fatal("coach was not persisted")
	}
}

func TestEnsureProfileFallsBackToEmailLocalPart(t *testing.T) {
	svc := NewCoachService(&stubCoachProfileStore{})
	coach, err := svc.EnsureProfile(context.Background(), "7", "", "amber@pool.example", nil)
	if err != nil {
		t.Fatalf("EnsureProfile: %v", err)
	}
	if coach.DisplayName != "amber" {
		t.Fatalf("DisplayName = %q, want amber", coach.DisplayName)
	}
}

func TestEnsureProfilePreservesOperatorAliases(t *testing.T) {
	store := &stubCoachProfileStore{coaches: map[string]*models.Coach{
		"7": {ID: "7", DisplayName: "Amber", Aliases: []string{"Amber", "CoachAmber"}},
	}}
	svc := NewCoachService(store)

	coach, err := svc.EnsureProfile(context.Background(), "7", "Amber", "amber@pool.example", nil)
	if err != nil {
		t.Fatalf("EnsureProfile: %v", err)
	}
	found := false
	for _, a := range coach.Aliases {
		if a == "CoachAmber" {
			found = true
		}
	}
	if !found {
		t.Fatalf("operator alias lost: %v", coach.Aliases)
	}
}

func TestEnsureProfileKeepsExistingDisplayName(t *testing.T) {
	store := &stubCoachProfileStore{coaches: map[string]*models.Coach{
		"7": {ID: "7", DisplayName: "Amber Lee", Aliases: []string{"Amber Lee"}},
	}}
	svc := NewCoachService(store)

	coach, err := svc.EnsureProfile(context.Background(), "7", "", "amber@pool.example", nil)
	if err != nil {
		t.Fatalf("EnsureProfile: %v", err)
	}
	if coach.DisplayName != "Amber Lee" {
		t.Fatalf("DisplayName = %q, want the existing name kept", coach.DisplayName)
	}
}

func TestAddAliases(t *testing.T) {
	store := &stubCoachProfileStore{coaches: map[string]*models.Coach{
		"7": {ID: "7", DisplayName: "Amber", Aliases: []string{"Amber"}},
	}}
	svc := NewCoachService(store)

	coach, err := svc.AddAliases(context.Background(), "7", []string{"CoachAmber", "amber"})
	if err != nil {
		t.Fatalf("AddAliases: %v", err)
	}
	want := []string{"Amber", "CoachAmber"}
	if !reflect.DeepEqual(coach.Aliases, want) {
		t.Fatalf("Aliases = %v, want %v", coach.Aliases, want)
	}
}

func TestBuildAliasesDedupKeepsFirstCasing(t *testing.T) {
	got := BuildAliases("Amber", "Amber@Pool.example", []string{"amber", "AMBER", "Coach Amber"})
	want := []string{"Amber", "Amber@Pool.example", "Coach Amber"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("BuildAliases = %v, want %v", got, want)
	}
}

func TestBuildAliasesSkipsBlanks(t *testing.T) {
	got := BuildAliases("Amber", "", []string{"  ", ""})
	want := []string{"Amber"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("BuildAliases = %v, want %v", got, want)
	}
}
