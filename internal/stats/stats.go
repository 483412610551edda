// Package stats 汇总测验结果：平均分、及格率以及难度/参与度/成绩分档。
// 所有函数只处理已查询出的结果行，空输入返回零值而不是错误。
package stats

import (
	"math"
	"sort"

	"smart_quiz_portal/internal/model"
)

const DefaultPassThreshold = 60.0

// AverageScore 百分比的算术平均值，空集合为 0
func AverageScore(rows []model.ResultRow) float64 {
	if len(rows) == 0 {
		return 0
	}
	var sum float64
	for _, r := range rows {
		sum += r.Percentage
	}
	return sum / float64(len(rows))
}

// PassRate 百分比 >= threshold 的结果所占比例 (0-100)
func PassRate(rows []model.ResultRow, threshold float64) float64 {
	if len(rows) == 0 {
		return 0
	}
	passed := 0
	for _, r := range rows {
		if r.Percentage >= threshold {
			passed++
		}
	}
	return float64(passed) / float64(len(rows)) * 100
}

func DifficultyTier(avg float64) model.DifficultyTier {
	switch {
	case avg >= 80:
		return model.Easy
	case avg >= 60:
		return model.DifficultyMedium
	default:
		return model.Hard
	}
}

func ParticipationTier(attempts int) model.ParticipationTier {
	switch {
	case attempts >= 5:
		return model.ParticipationHigh
	case attempts >= 2:
		return model.ParticipationMedium
	default:
		return model.ParticipationLow
	}
}

func ScoreBand(percentage float64) model.ScoreBand {
	switch {
	case percentage >= 80:
		return model.Excellent
	case percentage >= 60:
		return model.Good
	default:
		return model.Poor
	}
}

// Summarize 计算一组结果的整体统计，展示用数值保留一位或两位小数
func Summarize(rows []model.ResultRow, threshold float64) model.Summary {
	if len(rows) == 0 {
		return model.Summary{}
	}

	students := make(map[uint]struct{})
	highest, lowest := rows[0].Percentage, rows[0].Percentage
	for _, r := range rows {
		students[r.UserID] = struct{}{}
		highest = math.Max(highest, r.Percentage)
		lowest = math.Min(lowest, r.Percentage)
	}

	return model.Summary{
		Attempts:     len(rows),
		Students:     len(students),
		AverageScore: Round(AverageScore(rows), 2),
		HighestScore: highest,
		LowestScore:  lowest,
		PassRate:     Round(PassRate(rows, threshold), 1),
	}
}

// GroupByQuiz 按测验分组，难度按未取整的平均分判定，结果按标题排序
func GroupByQuiz(rows []model.ResultRow, threshold float64) []model.QuizSummary {
	groups := make(map[uint][]model.ResultRow)
	for _, r := range rows {
		groups[r.QuizID] = append(groups[r.QuizID], r)
	}

	out := make([]model.QuizSummary, 0, len(groups))
	for quizID, group := range groups {
		out = append(out, model.QuizSummary{
			QuizID:     quizID,
			QuizTitle:  group[0].QuizTitle,
			Difficulty: DifficultyTier(AverageScore(group)),
			Summary:    Summarize(group, threshold),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].QuizTitle != out[j].QuizTitle {
			return out[i].QuizTitle < out[j].QuizTitle
		}
		return out[i].QuizID < out[j].QuizID
	})
	return out
}

// GroupByStudent 按学生分组；参与度按作答次数（含重复作答）判定
func GroupByStudent(rows []model.ResultRow, threshold float64) []model.StudentSummary {
	groups := make(map[uint][]model.ResultRow)
	for _, r := range rows {
		groups[r.UserID] = append(groups[r.UserID], r)
	}

	out := make([]model.StudentSummary, 0, len(groups))
	for userID, group := range groups {
		out = append(out, model.StudentSummary{
			UserID:        userID,
			StudentName:   group[0].StudentName,
			Participation: ParticipationTier(len(group)),
			Band:          ScoreBand(AverageScore(group)),
			Summary:       Summarize(group, threshold),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].StudentName != out[j].StudentName {
			return out[i].StudentName < out[j].StudentName
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

// Round 四舍五入到指定小数位
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// DisplayPercentage 页面上展示的整数百分比
func DisplayPercentage(v float64) int {
	return int(math.Round(v))
}
