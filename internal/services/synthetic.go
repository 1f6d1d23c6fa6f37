package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/cyclecore/internal/models"
	"golang.org/x/sync/errgroup"
)

const (
	minSyntheticCycleDays  = 21
	maxSyntheticCycleDays  = 35
	minSyntheticPeriodDays = 3
	maxSyntheticPeriodDays = 7

	periodCrampProbability = 0.9
	habitProbability       = 0.4
)

var (
	ErrInvalidPopulationSize = errors.New("invalid synthetic population size")
	ErrSelfTestFailed        = errors.New("synthetic data self-test failed")
)

var syntheticNamespace = uuid.MustParse("6f1c5a8e-3b0d-4f6e-9d2a-1c7b8e5f4a30")

type symptomOdds struct {
	symptom     models.Symptom
	probability float64
	minSeverity int
	maxSeverity int
}

type moodOdds struct {
	mood        models.Mood
	probability float64
}

type phaseProfile struct {
	symptoms []symptomOdds
	moods    []moodOdds
}

// Mood distributions sum to 1 within each phase.
var phaseProfiles = map[models.Phase]phaseProfile{
	models.PhaseMenstrual: {
		symptoms: []symptomOdds{
			{models.SymptomCramp, 0.8, 2, 3},
			{models.SymptomLowEnergy, 0.7, 1, 3},
			{models.SymptomBackPain, 0.6, 1, 2},
			{models.SymptomBloating, 0.5, 1, 2},
			{models.SymptomHeadache, 0.4, 1, 2},
			{models.SymptomNausea, 0.3, 1, 2},
		},
		moods: []moodOdds{
			{models.MoodTired, 0.5},
			{models.MoodNeutral, 0.25},
			{models.MoodSad, 0.15},
			{models.MoodAnxious, 0.1},
		},
	},
	models.PhaseFollicular: {
		symptoms: []symptomOdds{
			{models.SymptomLowEnergy, 0.2, 1, 2},
			{models.SymptomAcne, 0.3, 1, 2},
		},
		moods: []moodOdds{
			{models.MoodHappy, 0.4},
			{models.MoodCalm, 0.3},
			{models.MoodNeutral, 0.2},
			{models.MoodEcstatic, 0.1},
		},
	},
	models.PhaseOvulation: {
		symptoms: []symptomOdds{
			{models.SymptomCramp, 0.4, 1, 2},
			{models.SymptomDischarge, 0.7, 1, 2},
			{models.SymptomBreastTenderness, 0.5, 1, 2},
		},
		moods: []moodOdds{
			{models.MoodHappy, 0.5},
			{models.MoodEcstatic, 0.3},
			{models.MoodCalm, 0.2},
		},
	},
	models.PhaseLuteal: {
		symptoms: []symptomOdds{
			{models.SymptomBloating, 0.7, 1, 3},
			{models.SymptomBreastTenderness, 0.6, 1, 3},
			{models.SymptomCravings, 0.6, 1, 2},
			{models.SymptomAcne, 0.5, 1, 2},
			{models.SymptomLowEnergy, 0.4, 1, 2},
			{models.SymptomHeadache, 0.3, 1, 2},
			{models.SymptomAnxious, 0.5, 1, 2},
			{models.SymptomIrritable, 0.4, 1, 2},
		},
		moods: []moodOdds{
			{models.MoodAnxious, 0.3},
			{models.MoodIrritable, 0.3},
			{models.MoodTired, 0.2},
			{models.MoodNeutral, 0.1},
			{models.MoodSad, 0.1},
		},
	},
}

// Light, medium, heavy.
var periodFlowSplit = [len(models.AllFlows)]float64{0.3, 0.4, 0.3}

// Generator produces synthetic cycle histories. Output depends only on Seed
// and Start, so two generators with the same fields produce identical users.
type Generator struct {
	Seed  uint64
	Start time.Time
}

func NewGenerator(seed uint64, start time.Time) *Generator {
	return &Generator{Seed: seed, Start: dateOnly(start)}
}

func (generator *Generator) GenerateUsers(ctx context.Context, userCount int, cyclesPerUser int) ([]models.SyntheticUser, error) {
	if userCount < 0 || cyclesPerUser < 1 {
		return nil, fmt.Errorf("%w: users=%d cycles=%d", ErrInvalidPopulationSize, userCount, cyclesPerUser)
	}

	users := make([]models.SyntheticUser, userCount)
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.GOMAXPROCS(0))
	for index := 0; index < userCount; index++ {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			users[index] = generator.generateUser(index, cyclesPerUser)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return users, nil
}

func (generator *Generator) generateUser(index int, cyclesPerUser int) models.SyntheticUser {
	rng := rand.New(rand.NewPCG(generator.Seed, uint64(index)))
	cycleStart := addDays(generator.Start, rng.IntN(maxSyntheticCycleDays))

	periods := make([]models.PeriodSpan, 0, cyclesPerUser)
	logs := make([]models.DailyLog, 0, cyclesPerUser*maxSyntheticCycleDays)
	cycleLengths := make([]int, 0, cyclesPerUser)
	periodLengths := make([]int, 0, cyclesPerUser)

	for cycle := 0; cycle < cyclesPerUser; cycle++ {
		cycleLength := uniformInt(rng, minSyntheticCycleDays, maxSyntheticCycleDays)
		periodLength := uniformInt(rng, minSyntheticPeriodDays, maxSyntheticPeriodDays)

		periodEnd := addDays(cycleStart, periodLength-1)
		spanCycleLength := cycleLength
		spanPeriodLength := periodLength
		periods = append(periods, models.PeriodSpan{
			ID:               syntheticID(index, "period", cycleStart),
			Start:            cycleStart,
			End:              &periodEnd,
			CycleLengthDays:  &spanCycleLength,
			PeriodLengthDays: &spanPeriodLength,
		})

		for day := 1; day <= cycleLength; day++ {
			date := addDays(cycleStart, day-1)
			phase := ClassifyPhase(day, cycleLength, periodLength)
			logs = append(logs, generateSyntheticLog(rng, index, date, phase, day <= periodLength))
		}

		cycleLengths = append(cycleLengths, cycleLength)
		periodLengths = append(periodLengths, periodLength)
		cycleStart = addDays(cycleStart, cycleLength)
	}

	lastStart := periods[len(periods)-1].Start
	return models.SyntheticUser{
		Periods: periods,
		Logs:    logs,
		Prefs: models.CyclePreferences{
			AvgCycleDays:    int(math.Round(meanInts(cycleLengths))),
			AvgPeriodDays:   int(math.Round(meanInts(periodLengths))),
			LastPeriodStart: &lastStart,
		},
	}
}

func generateSyntheticLog(rng *rand.Rand, userIndex int, date time.Time, phase models.Phase, isPeriodDay bool) models.DailyLog {
	profile := phaseProfiles[phase]

	symptoms := make([]models.SymptomEntry, 0, len(profile.symptoms)+1)
	for _, odds := range profile.symptoms {
		if rng.Float64() < odds.probability {
			symptoms = append(symptoms, models.SymptomEntry{
				ID:       odds.symptom,
				Severity: uniformInt(rng, odds.minSeverity, odds.maxSeverity),
			})
		}
	}

	var flow models.Flow
	if isPeriodDay {
		if rng.Float64() < periodCrampProbability {
			symptoms = forceSymptom(symptoms, models.SymptomCramp, uniformInt(rng, 2, models.MaxSymptomSeverity))
		}
		flow = drawFlow(rng)
	}

	habits := make([]models.Habit, 0, len(models.AllHabits))
	for _, habit := range models.AllHabits {
		if rng.Float64() < habitProbability {
			habits = append(habits, habit)
		}
	}

	return models.DailyLog{
		ID:       syntheticID(userIndex, "log", date),
		Date:     date,
		Mood:     drawMood(rng, profile.moods),
		Symptoms: symptoms,
		Habits:   habits,
		Flow:     flow,
	}
}

// forceSymptom sets severity on an existing entry or appends a new one,
// keeping symptom ids unique.
func forceSymptom(entries []models.SymptomEntry, symptom models.Symptom, severity int) []models.SymptomEntry {
	for index := range entries {
		if entries[index].ID == symptom {
			entries[index].Severity = max(entries[index].Severity, severity)
			return entries
		}
	}
	return append(entries, models.SymptomEntry{ID: symptom, Severity: severity})
}

func drawMood(rng *rand.Rand, choices []moodOdds) models.Mood {
	if len(choices) == 0 {
		return ""
	}
	roll := rng.Float64()
	cumulative := 0.0
	for _, choice := range choices {
		cumulative += choice.probability
		if roll < cumulative {
			return choice.mood
		}
	}
	return choices[len(choices)-1].mood
}

func drawFlow(rng *rand.Rand) models.Flow {
	roll := rng.Float64()
	cumulative := 0.0
	for index, probability := range periodFlowSplit {
		cumulative += probability
		if roll < cumulative {
			return models.AllFlows[index]
		}
	}
	return models.AllFlows[len(models.AllFlows)-1]
}

func uniformInt(rng *rand.Rand, low int, high int) int {
	return low + rng.IntN(high-low+1)
}

func syntheticID(userIndex int, kind string, date time.Time) string {
	name := fmt.Sprintf("synthetic-%d-%s-%s", userIndex, kind, DayKey(date))
	return uuid.NewSHA1(syntheticNamespace, []byte(name)).String()
}

type FertileWindowTargets struct {
	Start []string `json:"start"`
	End   []string `json:"end"`
}

type TrainingTargets struct {
	NextPeriod    []string             `json:"nextPeriod"`
	Ovulation     []string             `json:"ovulation"`
	FertileWindow FertileWindowTargets `json:"fertileWindow"`
	Phase         []models.Phase       `json:"phase"`
}

// TrainingSet rows are aligned by index across Features and every target.
type TrainingSet struct {
	Features [][]float64     `json:"features"`
	Targets  TrainingTargets `json:"targets"`
}

func (set TrainingSet) Rows() int {
	return len(set.Features)
}

// BuildTrainingSet encodes every synthetic log with the start of its own
// cycle as anchor. Targets are derived from the user's average cycle, the
// phase target from the cycle the log was generated in.
func BuildTrainingSet(users []models.SyntheticUser) TrainingSet {
	set := TrainingSet{
		Features: make([][]float64, 0),
		Targets: TrainingTargets{
			NextPeriod:    make([]string, 0),
			Ovulation:     make([]string, 0),
			FertileWindow: FertileWindowTargets{Start: make([]string, 0), End: make([]string, 0)},
			Phase:         make([]models.Phase, 0),
		},
	}

	for _, user := range users {
		prefs := user.Prefs.Normalized()
		for index := range user.Logs {
			entry := user.Logs[index]
			span, ok := cycleSpanFor(user.Periods, entry.Date)
			if !ok {
				continue
			}

			anchor := dateOnly(span.Start)
			rowPrefs := prefs
			rowPrefs.LastPeriodStart = &anchor
			vector := BuildFeatures(FeatureInput{
				Log:     &entry,
				Prefs:   rowPrefs,
				Periods: user.Periods,
				AsOf:    entry.Date,
			})

			window, _ := BuildCycleWindow(rowPrefs)
			set.Features = append(set.Features, vector.Slice())
			set.Targets.NextPeriod = append(set.Targets.NextPeriod, DayKey(window.NextPeriodStart))
			set.Targets.Ovulation = append(set.Targets.Ovulation, DayKey(window.OvulationDate))
			set.Targets.FertileWindow.Start = append(set.Targets.FertileWindow.Start, DayKey(window.FertilityWindowStart))
			set.Targets.FertileWindow.End = append(set.Targets.FertileWindow.End, DayKey(window.FertilityWindowEnd))
			set.Targets.Phase = append(set.Targets.Phase, generatedPhase(span, entry.Date))
		}
	}
	return set
}

// cycleSpanFor returns the latest span starting on or before date.
func cycleSpanFor(periods []models.PeriodSpan, date time.Time) (models.PeriodSpan, bool) {
	var found models.PeriodSpan
	ok := false
	for _, span := range periods {
		if DaysBetween(span.Start, date) < 0 {
			continue
		}
		if !ok || span.Start.After(found.Start) {
			found = span
			ok = true
		}
	}
	return found, ok
}

func generatedPhase(span models.PeriodSpan, date time.Time) models.Phase {
	cycleLength := models.DefaultCycleLength
	if span.CycleLengthDays != nil {
		cycleLength = *span.CycleLengthDays
	}
	periodLength := models.DefaultPeriodLength
	if span.PeriodLengthDays != nil {
		periodLength = *span.PeriodLengthDays
	}
	return ClassifyPhase(DayInCycle(span.Start, date, cycleLength), cycleLength, periodLength)
}

// SelfTest checks the structural guarantees of generated data. All failures
// are reported together.
func SelfTest(users []models.SyntheticUser, set TrainingSet) error {
	failures := make([]error, 0)
	for index, user := range users {
		if len(user.Periods) == 0 {
			failures = append(failures, fmt.Errorf("user %d has no periods", index))
		}
		if len(user.Logs) == 0 {
			failures = append(failures, fmt.Errorf("user %d has no logs", index))
		}
	}

	for row, features := range set.Features {
		if len(features) != models.FeatureLength {
			failures = append(failures, fmt.Errorf("row %d has %d features, want %d", row, len(features), models.FeatureLength))
		}
	}

	rows := set.Rows()
	targets := []struct {
		name   string
		length int
	}{
		{"nextPeriod", len(set.Targets.NextPeriod)},
		{"ovulation", len(set.Targets.Ovulation)},
		{"fertileWindow.start", len(set.Targets.FertileWindow.Start)},
		{"fertileWindow.end", len(set.Targets.FertileWindow.End)},
		{"phase", len(set.Targets.Phase)},
	}
	for _, target := range targets {
		if target.length != rows {
			failures = append(failures, fmt.Errorf("target %s has %d rows, want %d", target.name, target.length, rows))
		}
	}

	if len(failures) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrSelfTestFailed, errors.Join(failures...))
}
