package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/terraincognita07/cyclecore/internal/models"
)

const (
	DefaultMinUserLogs     = 30
	DefaultRetrainInterval = 7 * 24 * time.Hour
	DefaultSyntheticUsers  = 50
	DefaultSyntheticCycles = 6

	minTrainingRows = 30
)

var (
	ErrAlreadyTraining           = errors.New("model update already in progress")
	ErrNotEligible               = errors.New("model update not eligible")
	ErrInsufficientTrainingData  = errors.New("insufficient training data")
	ErrInvalidLearningTransition = errors.New("invalid learning state transition")
)

type LearningPhase string

const (
	LearningIdle     LearningPhase = "idle"
	LearningTraining LearningPhase = "training"
)

type LearningStateStore interface {
	Load(userID uint) (models.LearningState, bool, error)
	Save(userID uint, state models.LearningState) error
	ListUserIDs() ([]uint, error)
	LoadPopulation(key string) ([]models.SyntheticUser, bool, error)
	SavePopulation(key string, users []models.SyntheticUser) error
}

// Trainer turns a training set into new per-signal accuracy.
type Trainer interface {
	Train(ctx context.Context, set TrainingSet, current models.SignalAccuracy) (models.SignalAccuracy, error)
}

// SimulatedTrainer stands in for a real model fit. It draws a bounded
// improvement over a fixed base accuracy.
type SimulatedTrainer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewSimulatedTrainer(seed uint64) *SimulatedTrainer {
	return &SimulatedTrainer{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (trainer *SimulatedTrainer) Train(ctx context.Context, set TrainingSet, _ models.SignalAccuracy) (models.SignalAccuracy, error) {
	if err := ctx.Err(); err != nil {
		return models.SignalAccuracy{}, err
	}
	if set.Rows() < minTrainingRows {
		return models.SignalAccuracy{}, fmt.Errorf("%w: %d rows", ErrInsufficientTrainingData, set.Rows())
	}

	trainer.mu.Lock()
	improvement := trainer.rng.Float64() * 0.2
	trainer.mu.Unlock()

	const base = 0.6
	return models.SignalAccuracy{
		PeriodPrediction:    math.Min(0.95, base+improvement),
		OvulationPrediction: math.Min(0.90, base+improvement*0.8),
		SymptomPrediction:   math.Min(0.85, base+improvement*0.6),
		Overall:             math.Min(0.92, base+improvement*0.7),
	}, nil
}

type LifecycleOptions struct {
	MinUserLogs     int
	RetrainInterval time.Duration
	SyntheticUsers  int
	SyntheticCycles int
	Now             func() time.Time
}

func (options LifecycleOptions) withDefaults() LifecycleOptions {
	if options.MinUserLogs <= 0 {
		options.MinUserLogs = DefaultMinUserLogs
	}
	if options.RetrainInterval <= 0 {
		options.RetrainInterval = DefaultRetrainInterval
	}
	if options.SyntheticUsers <= 0 {
		options.SyntheticUsers = DefaultSyntheticUsers
	}
	if options.SyntheticCycles <= 0 {
		options.SyntheticCycles = DefaultSyntheticCycles
	}
	if options.Now == nil {
		options.Now = time.Now
	}
	return options
}

type UpdateResult struct {
	Success      bool     `json:"success"`
	NewAccuracy  float64  `json:"newAccuracy"`
	ModelVersion string   `json:"modelVersion"`
	Improvements []string `json:"improvements"`
	Errors       []string `json:"errors"`
	Err          error    `json:"-"`
}

func failedUpdate(err error, accuracy float64, version string) UpdateResult {
	return UpdateResult{
		NewAccuracy:  accuracy,
		ModelVersion: version,
		Improvements: []string{},
		Errors:       []string{err.Error()},
		Err:          err,
	}
}

type LearningStats struct {
	DataPoints   int                   `json:"dataPoints"`
	LastTraining time.Time             `json:"lastTraining"`
	ModelVersion string                `json:"modelVersion"`
	Accuracy     models.SignalAccuracy `json:"accuracy"`
	Phase        LearningPhase         `json:"phase"`
}

type ModelPerformance struct {
	PeriodAccuracy    float64 `json:"periodAccuracy"`
	OvulationAccuracy float64 `json:"ovulationAccuracy"`
	SymptomAccuracy   float64 `json:"symptomAccuracy"`
	OverallConfidence float64 `json:"overallConfidence"`
}

type learningSlot struct {
	phase  LearningPhase
	state  *models.LearningState
	loaded bool
}

// LifecycleManager owns the learning state of every user. Each user has an
// Idle/Training state machine; at most one update per user is in flight and
// a second request is rejected instead of queued.
type LifecycleManager struct {
	store     LearningStateStore
	trainer   Trainer
	generator *Generator
	options   LifecycleOptions

	mu    sync.Mutex
	slots map[uint]*learningSlot

	populationMu sync.Mutex
	population   []models.SyntheticUser
}

func NewLifecycleManager(store LearningStateStore, trainer Trainer, generator *Generator, options LifecycleOptions) *LifecycleManager {
	return &LifecycleManager{
		store:     store,
		trainer:   trainer,
		generator: generator,
		options:   options.withDefaults(),
		slots:     make(map[uint]*learningSlot),
	}
}

// transition is the only place a slot changes phase.
func transition(slot *learningSlot, next LearningPhase) error {
	switch {
	case slot.phase == LearningIdle && next == LearningTraining:
	case slot.phase == LearningTraining && next == LearningIdle:
	case slot.phase == LearningTraining && next == LearningTraining:
		return ErrAlreadyTraining
	default:
		return fmt.Errorf("%w: %s -> %s", ErrInvalidLearningTransition, slot.phase, next)
	}
	slot.phase = next
	return nil
}

// slotLocked must be called with manager.mu held.
func (manager *LifecycleManager) slotLocked(userID uint) (*learningSlot, error) {
	slot, ok := manager.slots[userID]
	if !ok {
		slot = &learningSlot{phase: LearningIdle}
		manager.slots[userID] = slot
	}
	if slot.loaded {
		return slot, nil
	}

	state, found, err := manager.store.Load(userID)
	if err != nil {
		return nil, fmt.Errorf("load learning state: %w", err)
	}
	if found {
		slot.state = &state
	}
	slot.loaded = true
	return slot, nil
}

// syntheticPopulation returns the population shared by every user. It is
// loaded from the store, or generated and stored, on first use. Only
// populationMu is held meanwhile; callers must not hold mu.
func (manager *LifecycleManager) syntheticPopulation(ctx context.Context) ([]models.SyntheticUser, error) {
	manager.populationMu.Lock()
	defer manager.populationMu.Unlock()
	if manager.population != nil {
		return manager.population, nil
	}

	key := manager.populationKey()
	users, found, err := manager.store.LoadPopulation(key)
	if err != nil {
		return nil, fmt.Errorf("load synthetic data: %w", err)
	}
	if !found || len(users) == 0 {
		users, err = manager.generator.GenerateUsers(ctx, manager.options.SyntheticUsers, manager.options.SyntheticCycles)
		if err != nil {
			return nil, fmt.Errorf("generate synthetic data: %w", err)
		}
		if err := manager.store.SavePopulation(key, users); err != nil {
			return nil, fmt.Errorf("save synthetic data: %w", err)
		}
	}
	manager.population = users
	return users, nil
}

func (manager *LifecycleManager) populationKey() string {
	return fmt.Sprintf("seed=%d start=%s users=%d cycles=%d",
		manager.generator.Seed, DayKey(manager.generator.Start),
		manager.options.SyntheticUsers, manager.options.SyntheticCycles)
}

// AddUserData replaces the user's slice of the learning state, creating the
// state on first use.
func (manager *LifecycleManager) AddUserData(ctx context.Context, userID uint, logs []models.DailyLog, periods []models.PeriodSpan, prefs models.CyclePreferences) error {
	population, err := manager.syntheticPopulation(ctx)
	if err != nil {
		return err
	}

	manager.mu.Lock()
	defer manager.mu.Unlock()

	slot, err := manager.slotLocked(userID)
	if err != nil {
		return err
	}

	next := models.LearningState{
		ModelVersion: models.InitialModelVersion,
		LastTraining: manager.options.Now(),
		Accuracy:     models.InitialSignalAccuracy(),
	}
	if slot.state != nil {
		next = slot.state.Clone()
	}
	next.UserLogs = append([]models.DailyLog(nil), logs...)
	next.UserPeriods = append([]models.PeriodSpan(nil), periods...)
	next.UserPrefs = prefs
	next.SyntheticData = population

	if err := manager.store.Save(userID, next); err != nil {
		return fmt.Errorf("save learning state: %w", err)
	}
	slot.state = &next
	return nil
}

func (manager *LifecycleManager) ShouldUpdate(userID uint, now time.Time) (bool, error) {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	slot, err := manager.slotLocked(userID)
	if err != nil {
		return false, err
	}
	return manager.eligibleLocked(slot, now), nil
}

func (manager *LifecycleManager) eligibleLocked(slot *learningSlot, now time.Time) bool {
	if slot.state == nil || slot.phase != LearningIdle {
		return false
	}
	if len(slot.state.UserLogs) < manager.options.MinUserLogs {
		return false
	}
	return now.Sub(slot.state.LastTraining) >= manager.options.RetrainInterval
}

// CheckAndUpdate runs Update only when ShouldUpdate holds. ok is false when
// nothing was attempted.
func (manager *LifecycleManager) CheckAndUpdate(ctx context.Context, userID uint) (UpdateResult, bool) {
	should, err := manager.ShouldUpdate(userID, manager.options.Now())
	if err != nil {
		return failedUpdate(err, 0, ""), true
	}
	if !should {
		return UpdateResult{}, false
	}
	return manager.Update(ctx, userID), true
}

// Update refreshes accuracy from synthetic and user data. It never blocks on
// another update: a user already training gets ErrAlreadyTraining and a user
// without learning state gets ErrNotEligible. On failure the stored state is
// left as it was.
func (manager *LifecycleManager) Update(ctx context.Context, userID uint) UpdateResult {
	manager.mu.Lock()
	slot, err := manager.slotLocked(userID)
	if err != nil {
		manager.mu.Unlock()
		return failedUpdate(err, 0, "")
	}
	if slot.state == nil {
		manager.mu.Unlock()
		return failedUpdate(ErrNotEligible, 0, "")
	}
	if err := transition(slot, LearningTraining); err != nil {
		previous := slot.state
		manager.mu.Unlock()
		return failedUpdate(err, previous.Accuracy.Overall, previous.ModelVersion)
	}
	snapshot := slot.state.Clone()
	manager.mu.Unlock()

	var accuracy models.SignalAccuracy
	population, trainErr := manager.syntheticPopulation(ctx)
	if trainErr == nil {
		combined := make([]models.SyntheticUser, 0, len(population)+1)
		combined = append(combined, population...)
		combined = append(combined, models.SyntheticUser{
			Periods: RecomputeCycleLengths(snapshot.UserPeriods),
			Logs:    snapshot.UserLogs,
			Prefs:   snapshot.UserPrefs,
		})
		accuracy, trainErr = manager.trainer.Train(ctx, BuildTrainingSet(combined), snapshot.Accuracy)
	}

	manager.mu.Lock()
	defer manager.mu.Unlock()
	defer func() {
		_ = transition(slot, LearningIdle)
	}()

	current := slot.state.Clone()
	if trainErr != nil {
		return failedUpdate(trainErr, current.Accuracy.Overall, current.ModelVersion)
	}

	improvements := describeImprovements(current.Accuracy, accuracy)
	committed := current
	committed.SyntheticData = population
	committed.Accuracy = accuracy
	committed.ModelVersion = bumpPatchVersion(current.ModelVersion)
	committed.LastTraining = manager.options.Now()
	if err := manager.store.Save(userID, committed); err != nil {
		saveErr := fmt.Errorf("save learning state: %w", err)
		return failedUpdate(saveErr, current.Accuracy.Overall, current.ModelVersion)
	}
	slot.state = &committed

	return UpdateResult{
		Success:      true,
		NewAccuracy:  accuracy.Overall,
		ModelVersion: committed.ModelVersion,
		Improvements: improvements,
		Errors:       []string{},
	}
}

func describeImprovements(previous models.SignalAccuracy, next models.SignalAccuracy) []string {
	improvements := make([]string, 0, 4)
	signals := []struct {
		name     string
		previous float64
		next     float64
	}{
		{"overall accuracy", previous.Overall, next.Overall},
		{"period prediction", previous.PeriodPrediction, next.PeriodPrediction},
		{"ovulation prediction", previous.OvulationPrediction, next.OvulationPrediction},
		{"symptom prediction", previous.SymptomPrediction, next.SymptomPrediction},
	}
	for _, signal := range signals {
		if signal.next > signal.previous {
			improvements = append(improvements, fmt.Sprintf("%s improved: %.1f%% -> %.1f%%", signal.name, signal.previous*100, signal.next*100))
		}
	}
	return improvements
}

// bumpPatchVersion increments the patch part of a major.minor.patch version.
// Anything unparsable restarts from the initial version.
func bumpPatchVersion(version string) string {
	parts := strings.Split(strings.TrimSpace(version), ".")
	if len(parts) != 3 {
		parts = strings.Split(models.InitialModelVersion, ".")
	}
	numbers := make([]int, 3)
	for index, part := range parts {
		value, err := strconv.Atoi(part)
		if err != nil || value < 0 {
			return bumpPatchVersion(models.InitialModelVersion)
		}
		numbers[index] = value
	}
	return fmt.Sprintf("%d.%d.%d", numbers[0], numbers[1], numbers[2]+1)
}

func (manager *LifecycleManager) IsTraining(userID uint) bool {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	slot, ok := manager.slots[userID]
	return ok && slot.phase == LearningTraining
}

func (manager *LifecycleManager) Stats(userID uint) (LearningStats, bool, error) {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	slot, err := manager.slotLocked(userID)
	if err != nil || slot.state == nil {
		return LearningStats{}, false, err
	}
	return LearningStats{
		DataPoints:   len(slot.state.UserLogs),
		LastTraining: slot.state.LastTraining,
		ModelVersion: slot.state.ModelVersion,
		Accuracy:     slot.state.Accuracy,
		Phase:        slot.phase,
	}, true, nil
}

func (manager *LifecycleManager) Performance(userID uint) (ModelPerformance, bool, error) {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	slot, err := manager.slotLocked(userID)
	if err != nil || slot.state == nil {
		return ModelPerformance{}, false, err
	}
	accuracy := slot.state.Accuracy
	return ModelPerformance{
		PeriodAccuracy:    accuracy.PeriodPrediction,
		OvulationAccuracy: accuracy.OvulationPrediction,
		SymptomAccuracy:   accuracy.SymptomPrediction,
		OverallConfidence: accuracy.Overall,
	}, true, nil
}

// KnownUsers lists users with persisted learning state.
func (manager *LifecycleManager) KnownUsers() ([]uint, error) {
	return manager.store.ListUserIDs()
}
