package facade

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/pulsefit/coach-backend/internal/data/repos"
	"github.com/pulsefit/coach-backend/internal/data/rows"
	"github.com/pulsefit/coach-backend/internal/domain"
	"github.com/pulsefit/coach-backend/internal/platform/logger"
	"github.com/pulsefit/coach-backend/internal/services"
	"github.com/pulsefit/coach-backend/internal/usecase"
)

var dbSeq int

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbSeq++
	dsn := fmt.Sprintf("file:facade_test_%d?mode=memory&cache=shared", dbSeq)
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
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newProfileFacade(t *testing.T) *Profile {
	t.Helper()
	db := testDB(t)
	log := logger.Nop()
	profilesRepo := repos.NewProfileRepo(db, log)
	return &Profile{
		UserID:            uuid.New(),
		SignUp:            &usecase.SignUp{Profiles: profilesRepo, Bus: services.NopBus{}, Log: log},
		GetProfile:        &usecase.GetProfile{Profiles: profilesRepo},
		UpdateGoals:       &usecase.UpdateGoals{Profiles: profilesRepo},
		UpdatePreferences: &usecase.UpdatePreferences{Profiles: profilesRepo},
		UpdateConstraints: &usecase.UpdateConstraints{Profiles: profilesRepo},
		GetStats:          &usecase.GetStats{Profiles: profilesRepo},
	}
}

func TestProfileFacadeSuccessEnvelope(t *testing.T) {
	f := newProfileFacade(t)

	res := f.Call(context.Background(), "sign_up", json.RawMessage(`{"display_name":"Sam","email":"sam@example.com"}`))
	if !res.Success {
		t.Fatalf("sign_up failed: %+v", res.Error)
	}
	if res.Error != nil {
		t.Fatalf("success result carries error body: %+v", res.Error)
	}
	p, ok := res.Data.(*domain.UserProfile)
	if !ok {
		t.Fatalf("data type = %T", res.Data)
	}
	if p.UserID != f.UserID {
		t.Fatal("facade did not pin the authenticated user id")
	}
}

// The payload can't pick someone else's account; the facade overrides any
// user_id it carries.
func TestProfileFacadeIgnoresPayloadUserID(t *testing.T) {
	f := newProfileFacade(t)
	foreign := uuid.New()

	res := f.Call(context.Background(), "sign_up",
		json.RawMessage(fmt.Sprintf(`{"user_id":%q,"display_name":"Mallory"}`, foreign.String())))
	if !res.Success {
		t.Fatalf("sign_up failed: %+v", res.Error)
	}
	if res.Data.(*domain.UserProfile).UserID == foreign {
		t.Fatal("payload user_id leaked through")
	}
}

func TestProfileFacadeErrorKindPassthrough(t *testing.T) {
	f := newProfileFacade(t)

	res := f.Call(context.Background(), "get", nil)
	if res.Success {
		t.Fatal("get before sign_up succeeded")
	}
	if res.Error == nil || res.Error.Kind != "not_found" {
		t.Fatalf("error = %+v, want kind not_found", res.Error)
	}
}

func TestFacadeUnknownMethod(t *testing.T) {
	f := newProfileFacade(t)
	res := f.Call(context.Background(), "self_destruct", nil)
	if res.Success {
		t.Fatal("unknown method succeeded")
	}
	if res.Error.Kind != "validation_error" {
		t.Fatalf("kind = %q, want validation_error", res.Error.Kind)
	}
}

func TestFacadeBadPayload(t *testing.T) {
	f := newProfileFacade(t)
	res := f.Call(context.Background(), "update_goals", json.RawMessage(`{"goals": "not-a-list"}`))
	if res.Success {
		t.Fatal("bad payload succeeded")
	}
	if res.Error.Kind != "validation_error" {
		t.Fatalf("kind = %q, want validation_error", res.Error.Kind)
	}
}

func TestResultJSONShape(t *testing.T) {
	raw, err := json.Marshal(OK(map[string]int{"n": 1}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"success":true,"data":{"n":1}}` {
		t.Fatalf("ok envelope = %s", raw)
	}

	raw, err = json.Marshal(Fail(fmt.Errorf("boom")))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Result
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Success || back.Error.Kind != "internal_error" || back.Error.Message != "boom" {
		t.Fatalf("fail envelope = %+v", back)
	}
}
