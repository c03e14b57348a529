package actor

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pulsefit/coach-backend/internal/chat"
	"github.com/pulsefit/coach-backend/internal/data/repos"
	"github.com/pulsefit/coach-backend/internal/platform/cryptoutil"
	"github.com/pulsefit/coach-backend/internal/platform/logger"
	"github.com/pulsefit/coach-backend/internal/services"
	"github.com/pulsefit/coach-backend/internal/usecase"
)

// Shared carries the process-wide collaborators every actor builds its
// graph from. It is assembled once at startup and never mutated after.
type Shared struct {
	DB      *gorm.DB
	Box     *cryptoutil.Box
	AI      services.CoachAI
	Bus     services.EventBus
	Clients usecase.IntegrationClients
	Log     *logger.Logger
}

// RepoSet builds repositories lazily. All accessors run inside the owning
// actor's loop, so the nil-check memoization needs no locking.
type RepoSet struct {
	shared *Shared
	log    *logger.Logger

	profiles      repos.ProfileRepo
	plans         repos.PlanRepo
	workouts      repos.WorkoutRepo
	conversations repos.ConversationRepo
	connected     repos.ConnectedServiceRepo
	actorState    repos.ActorStateRepo
}

func (r *RepoSet) Profiles() repos.ProfileRepo {
	if r.profiles == nil {
		r.profiles = repos.NewProfileRepo(r.shared.DB, r.log)
	}
	return r.profiles
}

func (r *RepoSet) Plans() repos.PlanRepo {
	if r.plans == nil {
		r.plans = repos.NewPlanRepo(r.shared.DB, r.log)
	}
	return r.plans
}

func (r *RepoSet) Workouts() repos.WorkoutRepo {
	if r.workouts == nil {
		r.workouts = repos.NewWorkoutRepo(r.shared.DB, r.log)
	}
	return r.workouts
}

func (r *RepoSet) Conversations() repos.ConversationRepo {
	if r.conversations == nil {
		r.conversations = repos.NewConversationRepo(r.shared.DB, r.log)
	}
	return r.conversations
}

func (r *RepoSet) ConnectedServices() repos.ConnectedServiceRepo {
	if r.connected == nil {
		r.connected = repos.NewConnectedServiceRepo(r.shared.DB, r.shared.Box, r.log)
	}
	return r.connected
}

func (r *RepoSet) ActorState() repos.ActorStateRepo {
	if r.actorState == nil {
		r.actorState = repos.NewActorStateRepo(r.shared.DB, r.log)
	}
	return r.actorState
}

// Deps is one user's lazily built dependency graph. A fresh graph is
// constructed on every activation; nothing survives deactivation.
type Deps struct {
	UserID uuid.UUID
	Log    *logger.Logger

	shared *Shared
	repos  *RepoSet

	chatHandler *chat.Handler

	signUp             *usecase.SignUp
	getProfile         *usecase.GetProfile
	updateGoals        *usecase.UpdateGoals
	updatePreferences  *usecase.UpdatePreferences
	updateConstraints  *usecase.UpdateConstraints
	getStats           *usecase.GetStats
	generatePlan       *usecase.GeneratePlanFromGoals
	activatePlan       *usecase.ActivatePlan
	pausePlan          *usecase.PausePlan
	adjustPlan         *usecase.AdjustPlan
	getActivePlan      *usecase.GetActivePlan
	startWorkout       *usecase.StartWorkout
	completeWorkout    *usecase.CompleteWorkout
	skipWorkout        *usecase.SkipWorkout
	reactToWorkout     *usecase.ReactToWorkout
	listRecentWorkouts *usecase.ListRecentWorkouts
	sendCoachMessage   *usecase.SendCoachMessage
	respondToCheckIn   *usecase.RespondToCheckIn
	createCheckIn      *usecase.CreateCheckIn
	getConversation    *usecase.GetConversation
	connectService     *usecase.ConnectService
	disconnectService  *usecase.DisconnectService
	pauseService       *usecase.PauseService
	syncServiceData    *usecase.SyncServiceData
	listServices       *usecase.ListServices
}

func NewDeps(shared *Shared, userID uuid.UUID) *Deps {
	log := shared.Log.With("user_id", userID)
	return &Deps{
		UserID: userID,
		Log:    log,
		shared: shared,
		repos:  &RepoSet{shared: shared, log: log},
	}
}

func (d *Deps) Repos() *RepoSet { return d.repos }

func (d *Deps) ChatHandler() *chat.Handler {
	if d.chatHandler == nil {
		d.chatHandler = chat.NewHandler(d.Log, d.repos.Conversations(), d.SendCoachMessage(), d.UserID)
	}
	return d.chatHandler
}

func (d *Deps) SignUp() *usecase.SignUp {
	if d.signUp == nil {
		d.signUp = &usecase.SignUp{Profiles: d.repos.Profiles(), Bus: d.shared.Bus, Log: d.Log}
	}
	return d.signUp
}

func (d *Deps) GetProfile() *usecase.GetProfile {
	if d.getProfile == nil {
		d.getProfile = &usecase.GetProfile{Profiles: d.repos.Profiles()}
	}
	return d.getProfile
}

func (d *Deps) UpdateGoals() *usecase.UpdateGoals {
	if d.updateGoals == nil {
		d.updateGoals = &usecase.UpdateGoals{Profiles: d.repos.Profiles()}
	}
	return d.updateGoals
}

func (d *Deps) UpdatePreferences() *usecase.UpdatePreferences {
	if d.updatePreferences == nil {
		d.updatePreferences = &usecase.UpdatePreferences{Profiles: d.repos.Profiles()}
	}
	return d.updatePreferences
}

func (d *Deps) UpdateConstraints() *usecase.UpdateConstraints {
	if d.updateConstraints == nil {
		d.updateConstraints = &usecase.UpdateConstraints{Profiles: d.repos.Profiles()}
	}
	return d.updateConstraints
}

func (d *Deps) GetStats() *usecase.GetStats {
	if d.getStats == nil {
		d.getStats = &usecase.GetStats{Profiles: d.repos.Profiles()}
	}
	return d.getStats
}

func (d *Deps) GeneratePlanFromGoals() *usecase.GeneratePlanFromGoals {
	if d.generatePlan == nil {
		d.generatePlan = &usecase.GeneratePlanFromGoals{
			Profiles: d.repos.Profiles(),
			Plans:    d.repos.Plans(),
			AI:       d.shared.AI,
			Log:      d.Log,
		}
	}
	return d.generatePlan
}

func (d *Deps) ActivatePlan() *usecase.ActivatePlan {
	if d.activatePlan == nil {
		d.activatePlan = &usecase.ActivatePlan{Plans: d.repos.Plans()}
	}
	return d.activatePlan
}

func (d *Deps) PausePlan() *usecase.PausePlan {
	if d.pausePlan == nil {
		d.pausePlan = &usecase.PausePlan{Plans: d.repos.Plans()}
	}
	return d.pausePlan
}

func (d *Deps) AdjustPlan() *usecase.AdjustPlan {
	if d.adjustPlan == nil {
		d.adjustPlan = &usecase.AdjustPlan{Plans: d.repos.Plans()}
	}
	return d.adjustPlan
}

func (d *Deps) GetActivePlan() *usecase.GetActivePlan {
	if d.getActivePlan == nil {
		d.getActivePlan = &usecase.GetActivePlan{Plans: d.repos.Plans()}
	}
	return d.getActivePlan
}

func (d *Deps) StartWorkout() *usecase.StartWorkout {
	if d.startWorkout == nil {
		d.startWorkout = &usecase.StartWorkout{Plans: d.repos.Plans(), Bus: d.shared.Bus, Log: d.Log}
	}
	return d.startWorkout
}

func (d *Deps) CompleteWorkout() *usecase.CompleteWorkout {
	if d.completeWorkout == nil {
		d.completeWorkout = &usecase.CompleteWorkout{
			Workouts:      d.repos.Workouts(),
			Profiles:      d.repos.Profiles(),
			Plans:         d.repos.Plans(),
			Conversations: d.repos.Conversations(),
			Bus:           d.shared.Bus,
			Log:           d.Log,
		}
	}
	return d.completeWorkout
}

func (d *Deps) SkipWorkout() *usecase.SkipWorkout {
	if d.skipWorkout == nil {
		d.skipWorkout = &usecase.SkipWorkout{Plans: d.repos.Plans()}
	}
	return d.skipWorkout
}

func (d *Deps) ReactToWorkout() *usecase.ReactToWorkout {
	if d.reactToWorkout == nil {
		d.reactToWorkout = &usecase.ReactToWorkout{Workouts: d.repos.Workouts()}
	}
	return d.reactToWorkout
}

func (d *Deps) ListRecentWorkouts() *usecase.ListRecentWorkouts {
	if d.listRecentWorkouts == nil {
		d.listRecentWorkouts = &usecase.ListRecentWorkouts{Workouts: d.repos.Workouts()}
	}
	return d.listRecentWorkouts
}

func (d *Deps) SendCoachMessage() *usecase.SendCoachMessage {
	if d.sendCoachMessage == nil {
		d.sendCoachMessage = &usecase.SendCoachMessage{
			Conversations: d.repos.Conversations(),
			Profiles:      d.repos.Profiles(),
			AI:            d.shared.AI,
		}
	}
	return d.sendCoachMessage
}

func (d *Deps) RespondToCheckIn() *usecase.RespondToCheckIn {
	if d.respondToCheckIn == nil {
		d.respondToCheckIn = &usecase.RespondToCheckIn{Conversations: d.repos.Conversations()}
	}
	return d.respondToCheckIn
}

func (d *Deps) CreateCheckIn() *usecase.CreateCheckIn {
	if d.createCheckIn == nil {
		d.createCheckIn = &usecase.CreateCheckIn{Conversations: d.repos.Conversations()}
	}
	return d.createCheckIn
}

func (d *Deps) GetConversation() *usecase.GetConversation {
	if d.getConversation == nil {
		d.getConversation = &usecase.GetConversation{Conversations: d.repos.Conversations()}
	}
	return d.getConversation
}

func (d *Deps) ConnectService() *usecase.ConnectService {
	if d.connectService == nil {
		d.connectService = &usecase.ConnectService{
			Services: d.repos.ConnectedServices(),
			Clients:  d.shared.Clients,
			Bus:      d.shared.Bus,
			Log:      d.Log,
		}
	}
	return d.connectService
}

func (d *Deps) DisconnectService() *usecase.DisconnectService {
	if d.disconnectService == nil {
		d.disconnectService = &usecase.DisconnectService{
			Services: d.repos.ConnectedServices(),
			Bus:      d.shared.Bus,
			Log:      d.Log,
		}
	}
	return d.disconnectService
}

func (d *Deps) PauseService() *usecase.PauseService {
	if d.pauseService == nil {
		d.pauseService = &usecase.PauseService{Services: d.repos.ConnectedServices()}
	}
	return d.pauseService
}

func (d *Deps) SyncServiceData() *usecase.SyncServiceData {
	if d.syncServiceData == nil {
		d.syncServiceData = &usecase.SyncServiceData{
			Services: d.repos.ConnectedServices(),
			Workouts: d.repos.Workouts(),
			Clients:  d.shared.Clients,
			Bus:      d.shared.Bus,
			Log:      d.Log,
		}
	}
	return d.syncServiceData
}

func (d *Deps) ListServices() *usecase.ListServices {
	if d.listServices == nil {
		d.listServices = &usecase.ListServices{Services: d.repos.ConnectedServices()}
	}
	return d.listServices
}
