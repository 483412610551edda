package model

type DifficultyTier string

const (
	Easy             DifficultyTier = "Easy"
	DifficultyMedium DifficultyTier = "Medium"
	Hard             DifficultyTier = "Hard"
)

type ParticipationTier string

const (
	ParticipationHigh   ParticipationTier = "High"
	ParticipationMedium ParticipationTier = "Medium"
	ParticipationLow    ParticipationTier = "Low"
)

type ScoreBand string

const (
	Excellent ScoreBand = "Excellent"
	Good      ScoreBand = "Good"
	Poor      ScoreBand = "Poor"
)

// Summary 一组结果的统计值；Attempts 为 0 表示无数据
type Summary struct {
	Attempts     int     `json:"attempts"`
	Students     int     `json:"students"`
	AverageScore float64 `json:"averageScore"`
	HighestScore float64 `json:"highestScore"`
	LowestScore  float64 `json:"lowestScore"`
	PassRate     float64 `json:"passRate"`
}

type QuizSummary struct {
	QuizID     uint           `json:"quizId"`
	QuizTitle  string         `json:"quizTitle"`
	Difficulty DifficultyTier `json:"difficulty"`
	Summary
}

type StudentSummary struct {
	UserID        uint              `json:"userId"`
	StudentName   string            `json:"studentName"`
	Participation ParticipationTier `json:"participation"`
	Band          ScoreBand         `json:"band"`
	Summary
}

type StudentResult struct {
	ResultRow
	DisplayPercentage int       `json:"displayPercentage"`
	Band              ScoreBand `json:"band"`
}

type StudentReport struct {
	Summary
	Participation ParticipationTier `json:"participation"`
	Band          ScoreBand         `json:"band"`
	Quizzes       []QuizSummary     `json:"quizzes"`
}

type ClassReport struct {
	Class    ClassWithStats   `json:"class"`
	Summary  Summary          `json:"summary"`
	Quizzes  []QuizSummary    `json:"quizzes"`
	Students []StudentSummary `json:"students"`
}

type QuizReport struct {
	Quiz       QuizListItem     `json:"quiz"`
	Summary    Summary          `json:"summary"`
	Difficulty DifficultyTier   `json:"difficulty"`
	Students   []StudentSummary `json:"students"`
	Results    []ResultRow      `json:"results"`
}

type AnalyticsReport struct {
	Summary  Summary          `json:"summary"`
	Quizzes  []QuizSummary    `json:"quizzes"`
	Students []StudentSummary `json:"students"`
	Results  []ResultRow      `json:"results"`
}

type Overview struct {
	Users   map[UserRole]int64 `json:"users"`
	Classes int64              `json:"classes"`
	Quizzes int64              `json:"quizzes"`
	Results int64              `json:"results"`
	Summary Summary            `json:"summary"`
}
