package mappers

import (
	"fmt"

	"github.com/pulsefit/coach-backend/internal/data/rows"
	"github.com/pulsefit/coach-backend/internal/domain"
)

// Storage blob shapes for the performance and verification snapshots.
// Durations are whole seconds here; the domain speaks minutes.
type performanceBlob struct {
	Activities           []performedActivityBlob `json:"activities,omitempty"`
	TotalDurationSeconds int64                   `json:"total_duration_seconds"`
	PerceivedEffort      *int                    `json:"perceived_effort,omitempty"`
	Notes                string                  `json:"notes,omitempty"`
}

type performedActivityBlob struct {
	Name            string                `json:"name"`
	Sets            []domain.PerformedSet `json:"sets,omitempty"`
	DurationSeconds int64                 `json:"duration_seconds"`
}

// verificationBlob deliberately has no timestamp field: VerifiedAt is
// projected into the verified_at column and must not be duplicated here.
type verificationBlob struct {
	Source  string               `json:"source"`
	Signals []domain.TrustSignal `json:"signals,omitempty"`
}

func WorkoutToRow(w *domain.CompletedWorkout) (*rows.CompletedWorkout, error) {
	perf := performanceBlob{
		TotalDurationSeconds: MinutesToSeconds(w.Performance.TotalDurationMinutes),
		PerceivedEffort:      w.Performance.PerceivedEffort,
		Notes:                w.Performance.Notes,
	}
	for _, a := range w.Performance.Activities {
		perf.Activities = append(perf.Activities, performedActivityBlob{
			Name:            a.Name,
			Sets:            a.Sets,
			DurationSeconds: MinutesToSeconds(a.DurationMinutes),
		})
	}
	perfJSON, err := marshalJSON(perf)
	if err != nil {
		return nil, fmt.Errorf("marshal performance: %w", err)
	}

	row := &rows.CompletedWorkout{
		ID:          w.ID,
		UserID:      w.UserID,
		PlanID:      w.PlanID,
		WeekNumber:  w.WeekNumber,
		DayNumber:   w.DayNumber,
		Title:       w.Title,
		Performance: perfJSON,
		CompletedAt: w.CompletedAt,
		CreatedAt:   w.CreatedAt,
	}
	if w.Verification != nil {
		ver, err := marshalJSON(verificationBlob{
			Source:  w.Verification.Source,
			Signals: w.Verification.Signals,
		})
		if err != nil {
			return nil, fmt.Errorf("marshal verification: %w", err)
		}
		row.Verification = ver
		verifiedAt := w.Verification.VerifiedAt
		row.VerifiedAt = &verifiedAt
	}
	return row, nil
}

func WorkoutToDomain(r *rows.CompletedWorkout, reactions []rows.WorkoutReaction) (*domain.CompletedWorkout, error) {
	var perf performanceBlob
	if err := unmarshalJSON(r.Performance, &perf); err != nil {
		return nil, fmt.Errorf("unmarshal performance: %w", err)
	}
	w := &domain.CompletedWorkout{
		ID:         r.ID,
		UserID:     r.UserID,
		PlanID:     r.PlanID,
		WeekNumber: r.WeekNumber,
		DayNumber:  r.DayNumber,
		Title:      r.Title,
		Performance: domain.PerformanceSnapshot{
			TotalDurationMinutes: SecondsToMinutes(perf.TotalDurationSeconds),
			PerceivedEffort:      perf.PerceivedEffort,
			Notes:                perf.Notes,
		},
		CompletedAt: r.CompletedAt,
		CreatedAt:   r.CreatedAt,
	}
	for _, a := range perf.Activities {
		w.Performance.Activities = append(w.Performance.Activities, domain.PerformedActivity{
			Name:            a.Name,
			Sets:            a.Sets,
			DurationMinutes: SecondsToMinutes(a.DurationSeconds),
		})
	}
	if len(r.Verification) > 0 && r.VerifiedAt != nil {
		var ver verificationBlob
		if err := unmarshalJSON(r.Verification, &ver); err != nil {
			return nil, fmt.Errorf("unmarshal verification: %w", err)
		}
		w.Verification = &domain.VerificationSnapshot{
			Source:     ver.Source,
			Signals:    ver.Signals,
			VerifiedAt: *r.VerifiedAt,
		}
	}
	for i := range reactions {
		w.Reactions = append(w.Reactions, ReactionToDomain(&reactions[i]))
	}
	return w, nil
}

func ReactionToRow(re *domain.Reaction) rows.WorkoutReaction {
	return rows.WorkoutReaction{
		ID:        re.ID,
		WorkoutID: re.WorkoutID,
		AuthorID:  re.AuthorID,
		Emoji:     re.Emoji,
		CreatedAt: re.CreatedAt,
	}
}

func ReactionToDomain(r *rows.WorkoutReaction) domain.Reaction {
	return domain.Reaction{
		ID:        r.ID,
		WorkoutID: r.WorkoutID,
		AuthorID:  r.AuthorID,
		Emoji:     r.Emoji,
		CreatedAt: r.CreatedAt,
	}
}
