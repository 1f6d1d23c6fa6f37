package services

import (
	"math"
	"sort"

	"github.com/terraincognita07/cyclecore/internal/models"
)

const accuracyWindowCycles = 3

var moodScores = map[models.Mood]int{
	models.MoodEcstatic:  9,
	models.MoodHappy:     7,
	models.MoodCalm:      6,
	models.MoodNeutral:   5,
	models.MoodTired:     4,
	models.MoodSad:       3,
	models.MoodAnxious:   3,
	models.MoodIrritable: 2,
	models.MoodAngry:     1,
}

// BuildCycleStats aggregates completed spans only. With fewer than two of
// them it returns the documented defaults instead of failing.
func BuildCycleStats(periods []models.PeriodSpan) models.CycleStats {
	completed := make([]models.PeriodSpan, 0, len(periods))
	for _, span := range periods {
		if span.IsCompleted() {
			completed = append(completed, span)
		}
	}
	sort.SliceStable(completed, func(i, j int) bool {
		return completed[i].Start.Before(completed[j].Start)
	})

	stats := models.CycleStats{
		AvgCycleLength:  models.DefaultCycleLength,
		AvgPeriodLength: models.DefaultPeriodLength,
		TotalCycles:     len(completed),
	}
	if len(completed) < 2 {
		return stats
	}

	cycleLengths := make([]int, 0, len(completed))
	periodLengths := make([]int, 0, len(completed))
	for _, span := range completed {
		cycleLengths = append(cycleLengths, *span.CycleLengthDays)
		if span.PeriodLengthDays != nil && *span.PeriodLengthDays > 0 {
			periodLengths = append(periodLengths, *span.PeriodLengthDays)
		}
	}

	stats.AvgCycleLength = int(math.Round(meanInts(cycleLengths)))
	if len(periodLengths) > 0 {
		stats.AvgPeriodLength = int(math.Round(meanInts(periodLengths)))
	}
	last := cycleLengths[len(cycleLengths)-1]
	stats.LastCycleLength = &last
	stats.CycleVariability = roundTo(populationStdDev(cycleLengths), 1)
	stats.PredictionAccuracy = predictionAccuracy(tailInts(cycleLengths, accuracyWindowCycles), stats.AvgCycleLength)
	return stats
}

// predictionAccuracy scores how well the average would have predicted the
// recent cycles. The first cycle of the window has no predecessor and is
// skipped, matching the pairwise comparison.
func predictionAccuracy(recent []int, avgCycleLength int) int {
	if len(recent) < 2 || avgCycleLength <= 0 {
		return 0
	}

	var totalError float64
	for _, actual := range recent[1:] {
		totalError += math.Abs(float64(avgCycleLength - actual))
	}
	avgError := totalError / float64(len(recent)-1)
	accuracy := math.Round(math.Max(0, 100-(avgError/float64(avgCycleLength))*100))
	return int(math.Min(100, accuracy))
}

// SymptomFrequency reports, per symptom, the rounded percentage of logs that
// contain it. Symptoms that never appear are left out.
func SymptomFrequency(logs []models.DailyLog) map[models.Symptom]int {
	frequency := make(map[models.Symptom]int)
	if len(logs) == 0 {
		return frequency
	}

	counts := make(map[models.Symptom]int)
	for _, entry := range logs {
		for _, symptom := range SymptomIDs(entry.Symptoms) {
			counts[symptom]++
		}
	}
	for symptom, count := range counts {
		frequency[symptom] = int(math.Round(float64(count) / float64(len(logs)) * 100))
	}
	return frequency
}

func MoodTrend(logs []models.DailyLog) []models.MoodPoint {
	sorted := make([]models.DailyLog, 0, len(logs))
	sorted = append(sorted, logs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	points := make([]models.MoodPoint, 0, len(sorted))
	for _, entry := range sorted {
		score, ok := moodScores[entry.Mood]
		if !ok {
			continue
		}
		points = append(points, models.MoodPoint{
			Date:      DayKey(entry.Date),
			Mood:      entry.Mood,
			MoodScore: score,
		})
	}
	return points
}

func tailInts(values []int, n int) []int {
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}

type StatsPeriodReader interface {
	ListByUser(userID uint) ([]models.PeriodSpan, error)
}

type StatsLogReader interface {
	ListByUser(userID uint) ([]models.DailyLog, error)
}

type StatsService struct {
	periods StatsPeriodReader
	logs    StatsLogReader
}

type StatsReport struct {
	Cycle            models.CycleStats      `json:"cycle"`
	SymptomFrequency map[models.Symptom]int `json:"symptomFrequency"`
	MoodTrend        []models.MoodPoint     `json:"moodTrend"`
	LoggedDays       int                    `json:"loggedDays"`
}

func NewStatsService(periods StatsPeriodReader, logs StatsLogReader) *StatsService {
	return &StatsService{
		periods: periods,
		logs:    logs,
	}
}

func (service *StatsService) BuildReport(userID uint) (StatsReport, error) {
	periods, err := service.periods.ListByUser(userID)
	if err != nil {
		return StatsReport{}, err
	}
	logs, err := service.logs.ListByUser(userID)
	if err != nil {
		return StatsReport{}, err
	}

	return StatsReport{
		Cycle:            BuildCycleStats(periods),
		SymptomFrequency: SymptomFrequency(logs),
		MoodTrend:        MoodTrend(logs),
		LoggedDays:       len(logs),
	}, nil
}
