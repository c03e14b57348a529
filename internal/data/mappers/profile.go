// Package mappers converts domain aggregates to storage rows and back.
// Every function is pure; all round-trips must reproduce the original
// domain value with nil optionals staying nil.
package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/pulsefit/coach-backend/internal/data/rows"
	"github.com/pulsefit/coach-backend/internal/domain"
)

func ProfileToRow(p *domain.UserProfile) (*rows.UserProfile, error) {
	goals, err := marshalJSON(p.Goals)
	if err != nil {
		return nil, fmt.Errorf("marshal goals: %w", err)
	}
	constraints, err := marshalJSON(p.Constraints)
	if err != nil {
		return nil, fmt.Errorf("marshal constraints: %w", err)
	}
	prefs, err := marshalJSON(p.Preferences)
	if err != nil {
		return nil, fmt.Errorf("marshal preferences: %w", err)
	}
	return &rows.UserProfile{
		ID:          p.ID,
		UserID:      p.UserID,
		DisplayName: p.DisplayName,
		Email:       p.Email,
		Experience:  string(p.Experience),
		Goals:       goals,
		Constraints: constraints,
		Preferences: prefs,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}, nil
}

// ProfileToDomain rebuilds the aggregate. Stats and achievements come from
// their own tables; callers pass what they loaded (nil/empty is fine).
func ProfileToDomain(r *rows.UserProfile, stats *rows.ProfileStats, achievements []rows.Achievement) (*domain.UserProfile, error) {
	p := &domain.UserProfile{
		ID:          r.ID,
		UserID:      r.UserID,
		DisplayName: r.DisplayName,
		Email:       r.Email,
		Experience:  domain.ExperienceLevel(r.Experience),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if err := unmarshalJSON(r.Goals, &p.Goals); err != nil {
		return nil, fmt.Errorf("unmarshal goals: %w", err)
	}
	if err := unmarshalJSON(r.Constraints, &p.Constraints); err != nil {
		return nil, fmt.Errorf("unmarshal constraints: %w", err)
	}
	if err := unmarshalJSON(r.Preferences, &p.Preferences); err != nil {
		return nil, fmt.Errorf("unmarshal preferences: %w", err)
	}
	if stats != nil {
		p.Stats = StatsToDomain(stats)
	}
	for i := range achievements {
		p.Achievements = append(p.Achievements, AchievementToDomain(&achievements[i]))
	}
	return p, nil
}

func StatsToRow(s *domain.ProfileStats) *rows.ProfileStats {
	return &rows.ProfileStats{
		ID:            s.ID,
		ProfileID:     s.ProfileID,
		CurrentStreak: s.CurrentStreak,
		LongestStreak: s.LongestStreak,
		TotalWorkouts: s.TotalWorkouts,
		TotalMinutes:  s.TotalMinutes,
		LastWorkoutAt: s.LastWorkoutAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func StatsToDomain(r *rows.ProfileStats) *domain.ProfileStats {
	return &domain.ProfileStats{
		ID:            r.ID,
		ProfileID:     r.ProfileID,
		CurrentStreak: r.CurrentStreak,
		LongestStreak: r.LongestStreak,
		TotalWorkouts: r.TotalWorkouts,
		TotalMinutes:  r.TotalMinutes,
		LastWorkoutAt: r.LastWorkoutAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func AchievementToRow(a *domain.Achievement) rows.Achievement {
	return rows.Achievement{
		ID:        a.ID,
		ProfileID: a.ProfileID,
		Code:      a.Code,
		Title:     a.Title,
		EarnedAt:  a.EarnedAt,
	}
}

func AchievementToDomain(r *rows.Achievement) domain.Achievement {
	return domain.Achievement{
		ID:        r.ID,
		ProfileID: r.ProfileID,
		Code:      r.Code,
		Title:     r.Title,
		EarnedAt:  r.EarnedAt,
	}
}

func marshalJSON(v any) (datatypes.JSON, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// unmarshalJSON treats an empty or SQL-null column as the zero value, so a
// missing blob never surfaces as a decode error.
func unmarshalJSON(raw datatypes.JSON, out any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}
