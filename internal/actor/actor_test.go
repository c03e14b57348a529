package actor

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/pulsefit/coach-backend/internal/data/rows"
	"github.com/pulsefit/coach-backend/internal/domain"
	"github.com/pulsefit/coach-backend/internal/platform/cryptoutil"
	"github.com/pulsefit/coach-backend/internal/platform/logger"
	"github.com/pulsefit/coach-backend/internal/realtime"
	"github.com/pulsefit/coach-backend/internal/services"
	"github.com/pulsefit/coach-backend/internal/usecase"
)

var dbSeq int

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbSeq++
	dsn := fmt.Sprintf("file:actor_test_%d?mode=memory&cache=shared", dbSeq)
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

type echoAI struct{}

func (echoAI) Complete(ctx context.Context, req services.CompletionRequest) (*services.CompletionResponse, error) {
	last := req.Messages[len(req.Messages)-1]
	return &services.CompletionResponse{Content: "re: " + last.Content, Model: "echo"}, nil
}

func (e echoAI) Stream(ctx context.Context, req services.CompletionRequest, onDelta func(string)) (*services.CompletionResponse, error) {
	return e.Complete(ctx, req)
}

func testShared(t *testing.T) *Shared {
	t.Helper()
	box, err := cryptoutil.NewBox("actor-test-secret")
	if err != nil {
		t.Fatalf("box: %v", err)
	}
	return &Shared{
		DB:      testDB(t),
		Box:     box,
		AI:      echoAI{},
		Bus:     services.NopBus{},
		Clients: usecase.IntegrationClients{},
		Log:     logger.Nop(),
	}
}

func chatFrame(t *testing.T, content string) realtime.Frame {
	t.Helper()
	f, err := realtime.NewFrame(realtime.FrameChat, realtime.ChatPayload{Content: content})
	if err != nil {
		t.Fatalf("frame: %v", err)
	}
	return f
}

// flush waits until everything queued before it has been processed.
func flush(t *testing.T, a *Actor) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Invoke(ctx, func(*Deps) {}); err != nil {
		t.Fatalf("flush: %v", err)
	}
}

func TestDepsAccessorsMemoize(t *testing.T) {
	deps := NewDeps(testShared(t), uuid.New())
	if deps.Repos().Profiles() != deps.Repos().Profiles() {
		t.Fatal("profile repo not memoized")
	}
	if deps.SendCoachMessage() != deps.SendCoachMessage() {
		t.Fatal("use-case not memoized")
	}
	if deps.ChatHandler() != deps.ChatHandler() {
		t.Fatal("chat handler not memoized")
	}
}

// Every use-case accessor must yield a fully wired value; a nil dependency
// here is a construction bug that would otherwise only surface at call time.
func TestDepsWiringComplete(t *testing.T) {
	deps := NewDeps(testShared(t), uuid.New())

	for name, got := range map[string]any{
		"SignUp":             deps.SignUp(),
		"GetProfile":         deps.GetProfile(),
		"UpdateGoals":        deps.UpdateGoals(),
		"UpdatePreferences":  deps.UpdatePreferences(),
		"UpdateConstraints":  deps.UpdateConstraints(),
		"GetStats":           deps.GetStats(),
		"GeneratePlan":       deps.GeneratePlanFromGoals(),
		"ActivatePlan":       deps.ActivatePlan(),
		"PausePlan":          deps.PausePlan(),
		"AdjustPlan":         deps.AdjustPlan(),
		"GetActivePlan":      deps.GetActivePlan(),
		"StartWorkout":       deps.StartWorkout(),
		"CompleteWorkout":    deps.CompleteWorkout(),
		"SkipWorkout":        deps.SkipWorkout(),
		"ReactToWorkout":     deps.ReactToWorkout(),
		"ListRecentWorkouts": deps.ListRecentWorkouts(),
		"SendCoachMessage":   deps.SendCoachMessage(),
		"RespondToCheckIn":   deps.RespondToCheckIn(),
		"CreateCheckIn":      deps.CreateCheckIn(),
		"GetConversation":    deps.GetConversation(),
		"ConnectService":     deps.ConnectService(),
		"DisconnectService":  deps.DisconnectService(),
		"PauseService":       deps.PauseService(),
		"SyncServiceData":    deps.SyncServiceData(),
		"ListServices":       deps.ListServices(),
	} {
		if got == nil {
			t.Fatalf("%s wired nil", name)
		}
	}

	if deps.SignUp().Profiles == nil || deps.SignUp().Bus == nil || deps.SignUp().Log == nil {
		t.Fatal("SignUp has nil dependency")
	}
	if deps.SendCoachMessage().Conversations == nil || deps.SendCoachMessage().AI == nil {
		t.Fatal("SendCoachMessage has nil dependency")
	}
	if deps.SyncServiceData().Services == nil || deps.SyncServiceData().Workouts == nil || deps.SyncServiceData().Clients == nil {
		t.Fatal("SyncServiceData has nil dependency")
	}
}

func TestRegistryReturnsSameActor(t *testing.T) {
	reg := NewRegistry(testShared(t))
	defer reg.Close()
	userID := uuid.New()

	a1, err := reg.Actor(context.Background(), userID)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	a2, err := reg.Actor(context.Background(), userID)
	if err != nil {
		t.Fatalf("second lookup: %v", err)
	}
	if a1 != a2 {
		t.Fatal("repeat lookup returned a different actor")
	}
	if reg.ActiveCount() != 1 {
		t.Fatalf("active count = %d, want 1", reg.ActiveCount())
	}
}

func TestRegistryConcurrentActivationCollapses(t *testing.T) {
	reg := NewRegistry(testShared(t))
	defer reg.Close()
	userID := uuid.New()

	const n = 16
	got := make([]*Actor, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, err := reg.Actor(context.Background(), userID)
			if err != nil {
				t.Errorf("activate: %v", err)
				return
			}
			got[i] = a
		}(i)
	}
	wg.Wait()
	for i := 1; i < n; i++ {
		if got[i] != got[0] {
			t.Fatal("concurrent activations produced distinct actors")
		}
	}
}

func TestReactivationBuildsFreshGraph(t *testing.T) {
	reg := NewRegistry(testShared(t))
	defer reg.Close()
	userID := uuid.New()

	a1, err := reg.Actor(context.Background(), userID)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	reg.Deactivate(userID)
	a2, err := reg.Actor(context.Background(), userID)
	if err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	if a1 == a2 {
		t.Fatal("reactivation reused the stopped actor")
	}
	if a1.deps == a2.deps {
		t.Fatal("reactivation reused the old dependency graph")
	}
}

func TestChatFramesProcessedInOrder(t *testing.T) {
	shared := testShared(t)
	reg := NewRegistry(shared)
	defer reg.Close()
	userID := uuid.New()

	a, err := reg.Actor(context.Background(), userID)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}

	var mu sync.Mutex
	var responses []realtime.Frame
	detach := a.Attach(func(f realtime.Frame) {
		mu.Lock()
		responses = append(responses, f)
		mu.Unlock()
	})
	defer detach()

	const n = 5
	for i := 0; i < n; i++ {
		if err := a.Deliver(chatFrame(t, fmt.Sprintf("message %d", i))); err != nil {
			t.Fatalf("deliver %d: %v", i, err)
		}
	}
	flush(t, a)

	msgs, err := listMessages(a, userID)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(msgs) != 2*n {
		t.Fatalf("messages = %d, want %d", len(msgs), 2*n)
	}
	for i := 0; i < n; i++ {
		user := msgs[2*i]
		if user.Role != domain.RoleUser || user.Content != fmt.Sprintf("message %d", i) {
			t.Fatalf("message %d out of order: %+v", i, user)
		}
		if msgs[2*i+1].Role != domain.RoleCoach {
			t.Fatalf("reply %d missing, got %+v", i, msgs[2*i+1])
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(responses) != n {
		t.Fatalf("pushed frames = %d, want %d", len(responses), n)
	}
	for _, f := range responses {
		if f.Type != realtime.FrameChatResponse {
			t.Fatalf("pushed frame type = %q", f.Type)
		}
	}
}

// Frames submitted from racing goroutines still serialize into a clean
// alternating log: each turn finishes before the next begins.
func TestConcurrentChatSubmissionKeepsLogConsistent(t *testing.T) {
	reg := NewRegistry(testShared(t))
	defer reg.Close()
	userID := uuid.New()
	a, err := reg.Actor(context.Background(), userID)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}

	const n = 8
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := a.Deliver(chatFrame(t, fmt.Sprintf("concurrent %d", i))); err != nil {
				t.Errorf("deliver %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()
	flush(t, a)

	msgs, err := listMessages(a, userID)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(msgs) != 2*n {
		t.Fatalf("messages = %d, want %d", len(msgs), 2*n)
	}
	for i, m := range msgs {
		if m.Seq != int64(i+1) {
			t.Fatalf("seq at %d = %d, want %d", i, m.Seq, i+1)
		}
		wantRole := domain.RoleUser
		if i%2 == 1 {
			wantRole = domain.RoleCoach
		}
		if m.Role != wantRole {
			t.Fatalf("role at %d = %q, want %q", i, m.Role, wantRole)
		}
	}
}

func TestUnknownFrameDropped(t *testing.T) {
	reg := NewRegistry(testShared(t))
	defer reg.Close()
	a, err := reg.Actor(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("activate: %v", err)
	}

	var mu sync.Mutex
	var pushed int
	detach := a.Attach(func(realtime.Frame) {
		mu.Lock()
		pushed++
		mu.Unlock()
	})
	defer detach()

	if err := a.Deliver(realtime.Frame{Type: "telepathy"}); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	flush(t, a)

	mu.Lock()
	defer mu.Unlock()
	if pushed != 0 {
		t.Fatalf("unknown frame produced %d pushes, want 0", pushed)
	}
}

func TestTickOpensCheckInOncePerCadence(t *testing.T) {
	reg := NewRegistry(testShared(t))
	defer reg.Close()
	userID := uuid.New()
	a, err := reg.Actor(context.Background(), userID)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}

	a.Tick()
	a.Tick()
	flush(t, a)

	var checkIns []domain.CheckIn
	var readErr error
	err = a.Invoke(context.Background(), func(deps *Deps) {
		conv, convErr := deps.GetConversation().Execute(context.Background(), usecase.GetConversationInput{UserID: userID})
		if convErr != nil {
			readErr = convErr
			return
		}
		checkIns = conv.CheckIns
	})
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if readErr != nil {
		t.Fatalf("read check-ins: %v", readErr)
	}
	if len(checkIns) != 1 {
		t.Fatalf("check-ins after two ticks = %d, want 1", len(checkIns))
	}
	if checkIns[0].Status != domain.CheckInPending {
		t.Fatalf("check-in status = %q, want pending", checkIns[0].Status)
	}
}

func TestDeliverAfterStopFails(t *testing.T) {
	reg := NewRegistry(testShared(t))
	userID := uuid.New()
	a, err := reg.Actor(context.Background(), userID)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	reg.Deactivate(userID)

	if err := a.Deliver(chatFrame(t, "hello?")); err == nil {
		t.Fatal("deliver to stopped actor succeeded")
	}
}

func listMessages(a *Actor, userID uuid.UUID) ([]domain.Message, error) {
	var msgs []domain.Message
	var outErr error
	err := a.Invoke(context.Background(), func(deps *Deps) {
		conv, err := deps.GetConversation().Execute(context.Background(), usecase.GetConversationInput{UserID: userID})
		if err != nil {
			outErr = err
			return
		}
		msgs = conv.Messages
	})
	if err != nil {
		return nil, err
	}
	if outErr != nil {
		return nil, outErr
	}
	return msgs, nil
}
