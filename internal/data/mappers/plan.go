package mappers

import (
	"fmt"

	"github.com/pulsefit/coach-backend/internal/data/rows"
	"github.com/pulsefit/coach-backend/internal/domain"
)

func PlanToRow(p *domain.FitnessPlan) (*rows.FitnessPlan, error) {
	goals, err := marshalJSON(p.Goals)
	if err != nil {
		return nil, fmt.Errorf("marshal goals: %w", err)
	}
	constraints, err := marshalJSON(p.Constraints)
	if err != nil {
		return nil, fmt.Errorf("marshal constraints: %w", err)
	}
	weeks, err := marshalJSON(p.Weeks)
	if err != nil {
		return nil, fmt.Errorf("marshal weeks: %w", err)
	}
	return &rows.FitnessPlan{
		ID:          p.ID,
		UserID:      p.UserID,
		Title:       p.Title,
		Status:      string(p.Status),
		Goals:       goals,
		Constraints: constraints,
		Weeks:       weeks,
		CurrentWeek: p.Position.Week,
		CurrentDay:  p.Position.Day,
		StartedAt:   p.StartedAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}, nil
}

func PlanToDomain(r *rows.FitnessPlan) (*domain.FitnessPlan, error) {
	p := &domain.FitnessPlan{
		ID:        r.ID,
		UserID:    r.UserID,
		Title:     r.Title,
		Status:    domain.PlanStatus(r.Status),
		Position:  domain.PlanPosition{Week: r.CurrentWeek, Day: r.CurrentDay},
		StartedAt: r.StartedAt,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if err := unmarshalJSON(r.Goals, &p.Goals); err != nil {
		return nil, fmt.Errorf("unmarshal goals: %w", err)
	}
	if err := unmarshalJSON(r.Constraints, &p.Constraints); err != nil {
		return nil, fmt.Errorf("unmarshal constraints: %w", err)
	}
	if err := unmarshalJSON(r.Weeks, &p.Weeks); err != nil {
		return nil, fmt.Errorf("unmarshal weeks: %w", err)
	}
	return p, nil
}
