package models

type Symptom string

const (
	SymptomCramp            Symptom = "cramp"
	SymptomHeadache         Symptom = "headache"
	SymptomBackPain         Symptom = "backPain"
	SymptomJointPain        Symptom = "jointPain"
	SymptomBloating         Symptom = "bloating"
	SymptomNausea           Symptom = "nausea"
	SymptomConstipation     Symptom = "constipation"
	SymptomDiarrhea         Symptom = "diarrhea"
	SymptomAcne             Symptom = "acne"
	SymptomBreastTenderness Symptom = "breastTenderness"
	SymptomDischarge        Symptom = "discharge"
	SymptomLowEnergy        Symptom = "lowEnergy"
	SymptomSleepy           Symptom = "sleepy"
	SymptomInsomnia         Symptom = "insomnia"
	SymptomAppetite         Symptom = "appetite"
	SymptomCravings         Symptom = "cravings"
	SymptomAnxious          Symptom = "anxious"
	SymptomIrritable        Symptom = "irritable"
	SymptomFocusIssues      Symptom = "focusIssues"
)

// AllSymptoms is the multi-hot order of the feature vector. Changing its
// length breaks the vector length assertion in the services package.
var AllSymptoms = [19]Symptom{
	SymptomCramp, SymptomHeadache, SymptomBackPain, SymptomJointPain,
	SymptomBloating, SymptomNausea, SymptomConstipation, SymptomDiarrhea,
	SymptomAcne, SymptomBreastTenderness, SymptomDischarge,
	SymptomLowEnergy, SymptomSleepy, SymptomInsomnia,
	SymptomAppetite, SymptomCravings, SymptomAnxious, SymptomIrritable, SymptomFocusIssues,
}

const MaxSymptomSeverity = 3

var symptomIndex = func() map[Symptom]int {
	index := make(map[Symptom]int, len(AllSymptoms))
	for position, symptom := range AllSymptoms {
		index[symptom] = position
	}
	return index
}()

func (symptom Symptom) Index() (int, bool) {
	position, ok := symptomIndex[symptom]
	return position, ok
}

func (symptom Symptom) IsKnown() bool {
	_, ok := symptomIndex[symptom]
	return ok
}

type Mood string

const (
	MoodEcstatic  Mood = "ecstatic"
	MoodHappy     Mood = "happy"
	MoodCalm      Mood = "calm"
	MoodNeutral   Mood = "neutral"
	MoodTired     Mood = "tired"
	MoodSad       Mood = "sad"
	MoodAnxious   Mood = "anxious"
	MoodIrritable Mood = "irritable"
	MoodAngry     Mood = "angry"
)

var AllMoods = [9]Mood{
	MoodEcstatic, MoodHappy, MoodCalm, MoodNeutral, MoodTired,
	MoodSad, MoodAnxious, MoodIrritable, MoodAngry,
}

func (mood Mood) Index() (int, bool) {
	for index, candidate := range AllMoods {
		if candidate == mood {
			return index, true
		}
	}
	return 0, false
}

func (mood Mood) IsKnown() bool {
	_, ok := mood.Index()
	return ok
}

type Flow string

const (
	FlowNone   Flow = ""
	FlowLight  Flow = "light"
	FlowMedium Flow = "medium"
	FlowHeavy  Flow = "heavy"
)

var AllFlows = [3]Flow{FlowLight, FlowMedium, FlowHeavy}

func (flow Flow) Index() (int, bool) {
	for index, candidate := range AllFlows {
		if candidate == flow {
			return index, true
		}
	}
	return 0, false
}

type Habit string

const (
	HabitWater  Habit = "water"
	HabitWalk   Habit = "walk"
	HabitRest   Habit = "rest"
	HabitShower Habit = "shower"
)

var AllHabits = [4]Habit{HabitWater, HabitWalk, HabitRest, HabitShower}
