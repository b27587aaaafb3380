package services

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/linqiu-w/SwimCoachBack/internal/models"
)

type coachProfileStore interface {
	GetByID(ctx context.Context, id string) (*models.Coach, error)
	Upsert(ctx context.Context, coach *models.Coach) error
}

// CoachService owns the coach-identity write path: creating or refreshing a
// coach profile when a coach registers or logs in, and appending
// operator-supplied aliases. The ingestion pipeline only reads what this
// writes.
type CoachService struct {
	coaches coachProfileStore
}

func NewCoachService(coaches coachProfileStore) *CoachService {
	return &CoachService{coaches: coaches}
}

// EnsureProfile creates the coaches row for an auth identity, or refreshes it
// while preserving any aliases an operator added since.
func (s *CoachService) EnsureProfile(ctx context.Context, coachID, displayName, email string, extraAliases []string) (*models.Coach, error) {
	existing, err := s.coaches.GetByID(ctx, coachID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if existing != nil {
		extraAliases = append(extraAliases, existing.Aliases...)
		if displayName == "" {
			displayName = existing.DisplayName
		}
	}
	if displayName == "" {
		if at := strings.IndexByte(email, '@'); at > 0 {
			displayName = email[:at]
		} else {
			displayName = "Coach"
		}
	}

	coach := &models.Coach{
		ID:          coachID,
		DisplayName: displayName,
		Aliases:     BuildAliases(displayName, email, extraAliases),
	}
	if email != "" {
		coach.Email = &email
	}
	if err := s.coaches.Upsert(ctx, coach); err != nil {
		return nil, err
	}
	return coach, nil
}

// AddAliases appends operator-supplied names to a coach's alias set.
func (s *CoachService) AddAliases(ctx context.Context, coachID string, aliases []string) (*models.Coach, error) {
	coach, err := s.coaches.GetByID(ctx, coachID)
	if err != nil {
		return nil, err
	}
	coach.Aliases = BuildAliases(coach.DisplayName, deref(coach.Email), append(coach.Aliases, aliases...))
	if err := s.coaches.Upsert(ctx, coach); err != nil {
		return nil, err
	}
	return coach, nil
}

// BuildAliases assembles the matchable name set for a coach: display name,
// email, the email's local part, and any extras. Deduplicated
// case-insensitively, keeping the casing of the first occurrence.
func BuildAliases(displayName, email string, extra []string) []string {
	list := make([]string, 0, len(extra)+3)
	seen := make(map[string]struct{})
	add := func(s string) {
		v := strings.TrimSpace(s)
		if v == "" {
			return
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		list = append(list, v)
	}

	add(displayName)
	add(email)
	if at := strings.IndexByte(email, '@'); at > 0 {
		add(email[:at])
	}
	for _, s := range extra {
		add(s)
	}
	return list
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
