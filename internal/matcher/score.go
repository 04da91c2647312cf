package matcher

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var yearsPattern = regexp.MustCompile(`(\d+)\s*(?:жил|year|years?)\s*(?:туршлага|experience)`)

// Details 各维度得分（0-100）。Education 实为职位要求覆盖度，字段名沿用对外接口。
type Details struct {
	Experience int `json:"experience"`
	Skills     int `json:"skills"`
	Education  int `json:"education"`
	Overall    int `json:"overall"`
}

// Score 计算简历文本与职位要求的匹配度。
// 要求覆盖 50%，技能 30%，经验 20%；要求与技能均高于 70 时总分至少为 80。
func Score(cvContent, requirements string) Details {
	cv := strings.ToLower(cvContent)
	req := strings.ToLower(requirements)

	reqScore := requirementScore(cv, req)
	skillScore := skillsScore(cv, req)
	expScore := experienceScore(cv, req)

	overall := int(math.Round(reqScore*0.5 + skillScore*0.3 + expScore*0.2))
	if reqScore > 70 && skillScore > 70 && overall < 80 {
		overall = 80
	}

	return Details{
		Experience: int(math.Round(expScore)),
		Skills:     int(math.Round(skillScore)),
		Education:  int(math.Round(reqScore)),
		Overall:    overall,
	}
}

func requirementScore(cv, req string) float64 {
	segments := strings.FieldsFunc(req, func(r rune) bool { return r == '.' || r == ',' })

	var matched, total float64
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if utf8.RuneCountInString(seg) <= 3 {
			continue
		}
		total++
		matched += phraseCredit(cv, seg)
	}
	if total == 0 {
		return 80
	}
	return matched / total * 100
}

func skillsScore(cv, req string) float64 {
	var matched, required float64
	for _, skill := range skillVocabulary {
		if !strings.Contains(req, skill) {
			continue
		}
		required++
		matched += phraseCredit(cv, skill)
	}
	if required == 0 {
		return 70
	}
	return matched / required * 100
}

// phraseCredit 整句包含记 1 分；否则过半的长词（>3 字符）被包含时记 0.5 分。
func phraseCredit(cv, phrase string) float64 {
	if strings.Contains(cv, phrase) {
		return 1
	}
	words := strings.Fields(phrase)
	hits := 0
	for _, w := range words {
		if utf8.RuneCountInString(w) > 3 && strings.Contains(cv, w) {
			hits++
		}
	}
	if float64(hits) >= float64(len(words))*0.5 {
		return 0.5
	}
	return 0
}

func experienceScore(cv, req string) float64 {
	for _, marker := range noExperienceMarkers {
		if strings.Contains(req, marker) {
			return 100
		}
	}

	cvYears := extractYears(cv)
	reqYears := extractYears(req)
	switch {
	case reqYears == 0:
		return 80
	case cvYears >= reqYears:
		return 100
	default:
		return float64(cvYears) / float64(reqYears) * 100
	}
}

func extractYears(text string) int {
	m := yearsPattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}
