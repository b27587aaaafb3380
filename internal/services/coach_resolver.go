package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/linqiu-w/SwimCoachBack/internal/emailparse"
	"github.com/linqiu-w/SwimCoachBack/internal/models"
	"github.com/sirupsen/logrus"
)

// resolverScanLimit bounds the fallback full-table scan.
const resolverScanLimit = 500

type coachDirectory interface {
	FindIDByAlias(ctx context.Context, alias string) (string, error)
	ListPage(ctx context.Context, limit int) ([]models.Coach, error)
}

// CoachResolver maps a fuzzy coach-name hint to a coach identity. The
// upstream email platform has no stable coach identifier; alias matching is
// the only defense against its naming variations ("CoachAmber",
// "Coach Amber", "Amber", the coach's raw email).
type CoachResolver struct {
	coaches coachDirectory
	logger  *logrus.Logger
}

func NewCoachResolver(coaches coachDirectory, logger *logrus.Logger) *CoachResolver {
	return &CoachResolver{coaches: coaches, logger: logger}
}

var leadingCoachRe = regexp.MustCompile(`(?i)^coach\s*`)

// Resolve returns the coach id for a hint, or "" when nothing matched.
// Absence is a business outcome, not an error; the caller decides whether it
// is fatal for the current action.
func (r *CoachResolver) Resolve(ctx context.Context, hint string) (string, error) {
	raw := strings.TrimSpace(hint)
	if raw == "" {
		return "", nil
	}

	base := emailparse.SplitCamelCoach(raw)
	variants := dedupe([]string{
		base,
		strings.TrimSpace(leadingCoachRe.ReplaceAllString(base, "")),
		strings.TrimSpace("Coach " + base),
		strings.ReplaceAll(base, " ", ""),
	})

	for _, v := range variants {
		id, err := r.coaches.FindIDByAlias(ctx, v)
		if err == nil {
			r.logger.WithFields(logrus.Fields{"hint": raw, "variant": v, "coachId": id}).
				Debug("coach resolved by alias")
			return id, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return "", err
		}
	}

	// No exact alias hit; scan a bounded page comparing canonical forms.
	coaches, err := r.coaches.ListPage(ctx, resolverScanLimit)
	if err != nil {
		return "", err
	}
	target := canonAlias(raw)
	for _, coach := range coaches {
		for _, alias := range coach.Aliases {
			if canonAlias(alias) == target {
				r.logger.WithFields(logrus.Fields{"hint": raw, "coachId": coach.ID}).
					Debug("coach resolved by canonical scan")
				return coach.ID, nil
			}
		}
	}

	r.logger.WithField("hint", raw).Info("coach not found for hint")
	return "", nil
}

// canonAlias lowercases, strips a leading "coach" prefix, and collapses
// whitespace, so "CoachAmber", "Coach Amber", and "AMBER" compare equal to
// alias "Amber".
func canonAlias(s string) string {
	c := emailparse.Canon(emailparse.SplitCamelCoach(s))
	c = strings.TrimSpace(strings.TrimPrefix(c, "coach"))
	return c
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
