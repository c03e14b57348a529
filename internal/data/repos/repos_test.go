package repos

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/pulsefit/coach-backend/internal/data/rows"
	"github.com/pulsefit/coach-backend/internal/domain"
	"github.com/pulsefit/coach-backend/internal/platform/apperr"
	"github.com/pulsefit/coach-backend/internal/platform/cryptoutil"
	"github.com/pulsefit/coach-backend/internal/platform/logger"
)

var dbSeq int

// testDB opens an isolated in-memory sqlite database with the full schema.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbSeq++
	dsn := fmt.Sprintf("file:repos_test_%d?mode=memory&cache=shared", dbSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(
		&rows.UserProfile{},
		&rows.ProfileStats{},
		&rows.Achievement{},
		&rows.FitnessPlan{},
		&rows.CompletedWorkout{},
		&rows.WorkoutReaction{},
		&rows.CoachConversation{},
		&rows.CoachMessage{},
		&rows.CoachCheckIn{},
		&rows.ConnectedService{},
		&rows.ActorState{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func at(h int) time.Time { return time.Date(2026, 8, 30, h, 0, 0, 0, time.UTC) }

func seedProfile(userID uuid.UUID) *domain.UserProfile {
	id := uuid.New()
	return &domain.UserProfile{
		ID:          id,
		UserID:      userID,
		DisplayName: "Ana",
		Email:       "ana@example.com",
		Experience:  domain.ExperienceBeginner,
		Goals:       []domain.FitnessGoal{{Type: domain.GoalGeneralHealth}},
		Constraints: domain.TrainingConstraints{DaysPerWeek: 3, MinutesPerSession: 45},
		Stats:       &domain.ProfileStats{ID: uuid.New(), ProfileID: id, UpdatedAt: at(1)},
		CreatedAt:   at(1),
		UpdatedAt:   at(1),
	}
}

func TestProfileRepoSaveAndFind(t *testing.T) {
	db := testDB(t)
	repo := NewProfileRepo(db, logger.Nop())
	ctx := context.Background()
	userID := uuid.New()

	p := seedProfile(userID)
	p.Achievements = []domain.Achievement{
		{ID: uuid.New(), ProfileID: p.ID, Code: "first_workout", Title: "First workout", EarnedAt: at(2)},
	}
	if err := repo.Save(ctx, p); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.FindByUserID(ctx, userID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.ID != p.ID || got.Email != p.Email {
		t.Fatalf("profile drifted: %+v", got)
	}
	if got.Stats == nil || got.Stats.ProfileID != p.ID {
		t.Fatalf("stats row not attached: %+v", got.Stats)
	}
	if len(got.Achievements) != 1 || got.Achievements[0].Code != "first_workout" {
		t.Fatalf("achievements not attached: %+v", got.Achievements)
	}
}

func TestProfileRepoUpsertIdempotence(t *testing.T) {
	db := testDB(t)
	repo := NewProfileRepo(db, logger.Nop())
	ctx := context.Background()

	p := seedProfile(uuid.New())
	p.Achievements = []domain.Achievement{
		{ID: uuid.New(), ProfileID: p.ID, Code: "streak_7", Title: "7-day streak", EarnedAt: at(3)},
	}
	if err := repo.Save(ctx, p); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := repo.Save(ctx, p); err != nil {
		t.Fatalf("second save: %v", err)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 profile row, got %d", count)
	}
	var achCount int64
	if err := db.Model(&rows.Achievement{}).Count(&achCount).Error; err != nil {
		t.Fatalf("count achievements: %v", err)
	}
	if achCount != 1 {
		t.Fatalf("achievements duplicated on re-save: %d", achCount)
	}
}

func TestProfileRepoNotFound(t *testing.T) {
	db := testDB(t)
	repo := NewProfileRepo(db, logger.Nop())
	_, err := repo.FindByUserID(context.Background(), uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestPlanRepoActiveLookup(t *testing.T) {
	db := testDB(t)
	repo := NewPlanRepo(db, logger.Nop())
	ctx := context.Background()
	userID := uuid.New()

	if _, err := repo.FindActiveByUserID(ctx, userID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not_found for no active plan, got %v", err)
	}

	plan := &domain.FitnessPlan{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     "Base",
		Status:    domain.PlanActive,
		Position:  domain.PlanPosition{Week: 1, Day: 1},
		Weeks:     []domain.PlanWeek{{Number: 1, Workouts: []domain.PlannedWorkout{{Day: 1, Title: "A", DurationMinutes: 30}}}},
		CreatedAt: at(4),
		UpdatedAt: at(4),
	}
	if err := repo.Save(ctx, plan); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.FindActiveByUserID(ctx, userID)
	if err != nil {
		t.Fatalf("find active: %v", err)
	}
	if got.ID != plan.ID || got.Status != domain.PlanActive {
		t.Fatalf("wrong active plan: %+v", got)
	}

	// A wholesale re-save with changed status replaces the row.
	plan.Status = domain.PlanPaused
	if err := repo.Save(ctx, plan); err != nil {
		t.Fatalf("re-save: %v", err)
	}
	if _, err := repo.FindActiveByUserID(ctx, userID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("paused plan still reported active: %v", err)
	}
	count, err := repo.Count(ctx, userID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 plan row, got %d", count)
	}
}

func TestWorkoutRepoReactionsReplaced(t *testing.T) {
	db := testDB(t)
	repo := NewWorkoutRepo(db, logger.Nop())
	ctx := context.Background()
	userID := uuid.New()

	w := &domain.CompletedWorkout{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       "Run",
		Performance: domain.PerformanceSnapshot{TotalDurationMinutes: 30},
		CompletedAt: at(10),
		CreatedAt:   at(10),
	}
	w.Reactions = []domain.Reaction{
		{ID: uuid.New(), WorkoutID: w.ID, AuthorID: uuid.New(), Emoji: "fire", CreatedAt: at(11)},
		{ID: uuid.New(), WorkoutID: w.ID, AuthorID: uuid.New(), Emoji: "clap", CreatedAt: at(12)},
	}
	if err := repo.Save(ctx, w); err != nil {
		t.Fatalf("save: %v", err)
	}

	w.Reactions = w.Reactions[:1]
	if err := repo.Save(ctx, w); err != nil {
		t.Fatalf("re-save: %v", err)
	}

	got, err := repo.FindByID(ctx, w.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got.Reactions) != 1 || got.Reactions[0].Emoji != "fire" {
		t.Fatalf("reactions not replaced wholesale: %+v", got.Reactions)
	}
}

func TestWorkoutRepoRecentOrdering(t *testing.T) {
	db := testDB(t)
	repo := NewWorkoutRepo(db, logger.Nop())
	ctx := context.Background()
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		w := &domain.CompletedWorkout{
			ID:          uuid.New(),
			UserID:      userID,
			Title:       fmt.Sprintf("W%d", i),
			Performance: domain.PerformanceSnapshot{TotalDurationMinutes: 20},
			CompletedAt: at(8 + i),
			CreatedAt:   at(8 + i),
		}
		if err := repo.Save(ctx, w); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	recent, err := repo.FindRecentByUserID(ctx, userID, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 workouts, got %d", len(recent))
	}
	if recent[0].Title != "W2" || recent[1].Title != "W1" {
		t.Fatalf("wrong order: %s, %s", recent[0].Title, recent[1].Title)
	}
}

func TestConversationRepoMessages(t *testing.T) {
	db := testDB(t)
	repo := NewConversationRepo(db, logger.Nop())
	ctx := context.Background()
	userID := uuid.New()

	conv := &domain.CoachConversation{ID: uuid.New(), UserID: userID, CreatedAt: at(1), UpdatedAt: at(1)}
	if err := repo.Save(ctx, conv); err != nil {
		t.Fatalf("save conversation: %v", err)
	}

	for i := 1; i <= 3; i++ {
		role := domain.RoleUser
		if i%2 == 0 {
			role = domain.RoleCoach
		}
		m := &domain.Message{
			ID:             uuid.New(),
			ConversationID: conv.ID,
			Seq:            int64(i),
			Role:           role,
			Content:        fmt.Sprintf("msg %d", i),
			CreatedAt:      at(i),
		}
		if err := repo.AppendMessage(ctx, m); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	maxSeq, err := repo.MaxSeq(ctx, conv.ID)
	if err != nil {
		t.Fatalf("max seq: %v", err)
	}
	if maxSeq != 3 {
		t.Fatalf("expected max seq 3, got %d", maxSeq)
	}

	msgs, err := repo.ListMessages(ctx, conv.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	for i, m := range msgs {
		if m.Seq != int64(i+1) {
			t.Fatalf("messages out of order at %d: seq %d", i, m.Seq)
		}
	}
}

func TestConversationRepoCheckIns(t *testing.T) {
	db := testDB(t)
	repo := NewConversationRepo(db, logger.Nop())
	ctx := context.Background()

	conv := &domain.CoachConversation{ID: uuid.New(), UserID: uuid.New(), CreatedAt: at(1), UpdatedAt: at(1)}
	if err := repo.Save(ctx, conv); err != nil {
		t.Fatalf("save conversation: %v", err)
	}

	ci := &domain.CheckIn{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		Prompt:         "How did the tempo run feel?",
		Status:         domain.CheckInPending,
		CreatedAt:      at(2),
	}
	if err := repo.AppendCheckIn(ctx, ci); err != nil {
		t.Fatalf("append check-in: %v", err)
	}

	resp := "pretty good"
	respondedAt := at(3)
	ci.Response = &resp
	ci.Status = domain.CheckInResponded
	ci.RespondedAt = &respondedAt
	if err := repo.SaveCheckIn(ctx, ci); err != nil {
		t.Fatalf("save check-in: %v", err)
	}

	got, err := repo.FindCheckIn(ctx, ci.ID)
	if err != nil {
		t.Fatalf("find check-in: %v", err)
	}
	if got.Status != domain.CheckInResponded || got.Response == nil || *got.Response != resp {
		t.Fatalf("check-in update lost: %+v", got)
	}
}

func TestConnectedServiceRepoSealsCredentials(t *testing.T) {
	db := testDB(t)
	box, err := cryptoutil.NewBox("test-secret")
	if err != nil {
		t.Fatalf("box: %v", err)
	}
	repo := NewConnectedServiceRepo(db, box, logger.Nop())
	ctx := context.Background()
	userID := uuid.New()

	svc := &domain.ConnectedService{
		ID:          uuid.New(),
		UserID:      userID,
		Provider:    "strava",
		Credentials: domain.Credentials{AccessToken: "plain-token", RefreshToken: "plain-refresh"},
		Permissions: []string{"activity:read"},
		Active:      true,
		ConnectedAt: at(1),
		UpdatedAt:   at(1),
	}
	if err := repo.Save(ctx, svc); err != nil {
		t.Fatalf("save: %v", err)
	}

	var raw rows.ConnectedService
	if err := db.Where("user_id = ?", userID).First(&raw).Error; err != nil {
		t.Fatalf("read raw row: %v", err)
	}
	if string(raw.Credentials) == `{"access_token":"plain-token","refresh_token":"plain-refresh"}` {
		t.Fatalf("credentials stored in plaintext")
	}

	got, err := repo.FindByProvider(ctx, userID, "strava")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Credentials.AccessToken != "plain-token" {
		t.Fatalf("credentials did not round-trip: %+v", got.Credentials)
	}
}

func TestActorStateRepoRoundTrip(t *testing.T) {
	db := testDB(t)
	repo := NewActorStateRepo(db, logger.Nop())
	ctx := context.Background()
	userID := uuid.New()

	if err := repo.Get(ctx, userID, "conversation_id", new(string)); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}

	convID := uuid.New().String()
	if err := repo.Put(ctx, userID, "conversation_id", convID); err != nil {
		t.Fatalf("put: %v", err)
	}
	// Second put overwrites, it does not duplicate.
	if err := repo.Put(ctx, userID, "conversation_id", convID); err != nil {
		t.Fatalf("second put: %v", err)
	}

	var got string
	if err := repo.Get(ctx, userID, "conversation_id", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != convID {
		t.Fatalf("value drifted: %s", got)
	}
}
