package survey

import (
	"math"

	"github.com/mbolis/survey-desk/model"
)

// Aggregate computes per-question statistics over every stored record of a
// survey. Questions are independent of each other; a scale question with no
// numeric answer is left out, and no records at all yields an empty map.
func Aggregate(schema []model.Question, records []model.AnswerRecord) map[string]QuestionStats {
	stats := make(map[string]QuestionStats)
	if len(records) == 0 {
		return stats
	}

	for _, q := range schema {
		summary, ok := KindOf(q).summarize(collect(q.ID, records), len(records))
		if !ok {
			continue
		}
		stats[q.ID] = QuestionStats{
			QuestionLabel: q.Label,
			Type:          q.Type,
			Summary:       summary,
		}
	}
	return stats
}

// collect returns the answers of the records that carry the question id.
func collect(id string, records []model.AnswerRecord) []any {
	answers := make([]any, 0, len(records))
	for _, r := range records {
		if v, ok := r.Data[id]; ok {
			answers = append(answers, v)
		}
	}
	return answers
}

type freeText struct{}

func (freeText) summarize(answers []any, records int) (Summary, bool) {
	return FillSummary{
		TotalAnswers:     len(answers),
		FilledPercentage: percent(len(answers), records),
	}, true
}

func (k Radio) summarize(answers []any, _ int) (Summary, bool) {
	return tally(k.Options, answers, false), true
}

func (k Select) summarize(answers []any, _ int) (Summary, bool) {
	return tally(k.Options, answers, false), true
}

func (k Checkbox) summarize(answers []any, _ int) (Summary, bool) {
	return tally(k.Options, answers, true), true
}

// tally seeds every declared option at zero so unselected options are still
// listed. Values that match no option are ignored.
func tally(opts []model.Option, answers []any, multiple bool) ChoiceSummary {
	counts := make([]OptionCount, len(opts))
	index := make(map[string]int, len(opts))
	for i, o := range opts {
		counts[i] = OptionCount{OptionID: o.ID, Label: o.Label}
		if _, dup := index[o.ID]; !dup {
			index[o.ID] = i
		}
	}

	bump := func(v any) {
		if s, ok := v.(string); ok {
			if i, ok := index[s]; ok {
				counts[i].Count++
			}
		}
	}
	for _, a := range answers {
		if !multiple {
			bump(a)
			continue
		}
		list, _ := asList(a)
		for _, v := range list {
			bump(v)
		}
	}

	for i := range counts {
		counts[i].Percentage = percent(counts[i].Count, len(answers))
	}
	return ChoiceSummary{Options: counts, TotalAnswers: len(answers)}
}

func (Scale) summarize(answers []any, _ int) (Summary, bool) {
	var (
		n      int
		sum    float64
		lo, hi float64
	)
	for _, a := range answers {
		v, ok := number(a)
		if !ok || math.IsInf(v, 0) {
			continue
		}
		if n == 0 || v < lo {
			lo = v
		}
		if n == 0 || v > hi {
			hi = v
		}
		sum += v
		n++
	}
	if n == 0 {
		return nil, false
	}
	return ScaleSummary{
		Average:      round2(sum / float64(n)),
		Min:          lo,
		Max:          hi,
		TotalAnswers: n,
	}, true
}

func (Unknown) summarize(answers []any, _ int) (Summary, bool) {
	return CountSummary{TotalAnswers: len(answers)}, true
}

// percent is part/whole*100 rounded to 2 decimals, 0 when whole is 0.
func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return round2(float64(part) / float64(whole) * 100)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
