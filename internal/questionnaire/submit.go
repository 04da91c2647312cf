package questionnaire

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"talento/internal/apperr"
	"talento/internal/model"
	"talento/internal/storage"
)

// Address 现住址与联系方式。
type Address struct {
	Aimag       string `json:"aimag"`
	Soum        string `json:"soum"`
	HomeAddress string `json:"homeAddress"`
	Phone       string `json:"phone"`
	Mobile      string `json:"mobile"`
	Email       string `json:"email"`
}

// PersonalInfo 个人信息。
type PersonalInfo struct {
	FatherName     string  `json:"fatherName"`
	Name           string  `json:"name"`
	Gender         string  `json:"gender"`
	BirthYear      string  `json:"birthYear"`
	BirthMonth     string  `json:"birthMonth"`
	BirthAimag     string  `json:"birthAimag"`
	BirthSoum      string  `json:"birthSoum"`
	BirthPlace     string  `json:"birthPlace"`
	Surname        string  `json:"surname"`
	Ethnicity      string  `json:"ethnicity"`
	SocialOrigin   string  `json:"socialOrigin"`
	CurrentAddress Address `json:"currentAddress"`
}

type School struct {
	SchoolName string `json:"schoolName"`
	Degree     string `json:"degree"`
	EndDate    string `json:"endDate"`
}

type Language struct {
	Language  string `json:"language"`
	Listening string `json:"listening"`
	Speaking  string `json:"speaking"`
	Reading   string `json:"reading"`
	Writing   string `json:"writing"`
}

type Software struct {
	Name  string `json:"name"`
	Level string `json:"level"`
}

type Job struct {
	Organization string `json:"organization"`
	Position     string `json:"position"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
}

type Education struct {
	GeneralEducation []School `json:"generalEducation"`
}

type Choices struct {
	Values                []string `json:"values,omitempty"`
	ReduceStress          []string `json:"reduceStress,omitempty"`
	AppropriateApproaches []string `json:"appropriateApproaches,omitempty"`
}

type IndividualSkills struct {
	SelfAwareness    Choices `json:"selfAwareness"`
	StressManagement Choices `json:"stressManagement"`
	ProblemSolving   Choices `json:"problemSolving"`
}

type Skills struct {
	IndividualSkills IndividualSkills `json:"individualSkills"`
}

type OfficeEquipment struct {
	Internet string `json:"internet"`
}

type ComputerSkills struct {
	Software        []Software      `json:"software"`
	OfficeEquipment OfficeEquipment `json:"officeEquipment"`
}

// Answers 通用问卷的结构化答案，按题目文本中的关键词映射到各题。
type Answers struct {
	PersonalInfo     PersonalInfo   `json:"personalInfo"`
	Education        Education      `json:"education"`
	Skills           Skills         `json:"skills"`
	ForeignLanguages []Language     `json:"foreignLanguages"`
	ComputerSkills   ComputerSkills `json:"computerSkills"`
	WorkExperience   []Job          `json:"workExperience"`
}

type rule struct {
	keywords []string
	value    func(a *Answers) string
}

// rules 按顺序匹配，较长的短语排在前面，避免被 "нэр" 这类通用词抢先命中。
var rules = []rule{
	{[]string{"сургуулийн нэр"}, func(a *Answers) string { return firstSchool(a).SchoolName }},
	{[]string{"ажилласан байгууллагын нэр"}, func(a *Answers) string { return firstJob(a).Organization }},
	{[]string{"эзэмшсэн программын нэр"}, func(a *Answers) string {
		parts := make([]string, 0, len(a.ComputerSkills.Software))
		for _, s := range a.ComputerSkills.Software {
			parts = append(parts, s.Name+": "+s.Level)
		}
		return strings.Join(parts, "; ")
	}},
	{[]string{"компьютерийн ур чадварын түвшин"}, func(a *Answers) string { return a.ComputerSkills.OfficeEquipment.Internet }},
	{[]string{"гадаад хэлний мэдлэг"}, func(a *Answers) string {
		parts := make([]string, 0, len(a.ForeignLanguages))
		for _, l := range a.ForeignLanguages {
			parts = append(parts, fmt.Sprintf("%s: %s, %s, %s, %s", l.Language, l.Listening, l.Speaking, l.Reading, l.Writing))
		}
		return strings.Join(parts, "; ")
	}},
	{[]string{"өөрийгөө танин мэдэх"}, func(a *Answers) string {
		return strings.Join(a.Skills.IndividualSkills.SelfAwareness.Values, ",")
	}},
	{[]string{"стрессээ тайлах"}, func(a *Answers) string {
		return strings.Join(a.Skills.IndividualSkills.StressManagement.ReduceStress, ",")
	}},
	{[]string{"асуудлыг бүтээлчээр шийдвэрлэх"}, func(a *Answers) string {
		return strings.Join(a.Skills.IndividualSkills.ProblemSolving.AppropriateApproaches, ",")
	}},
	{[]string{"оршин суугаа аймаг", "оршин суугаа хот"}, func(a *Answers) string { return a.PersonalInfo.CurrentAddress.Aimag }},
	{[]string{"оршин суугаа сум", "оршин суугаа дүүрэг"}, func(a *Answers) string { return a.PersonalInfo.CurrentAddress.Soum }},
	{[]string{"гэрийн хаяг"}, func(a *Answers) string { return a.PersonalInfo.CurrentAddress.HomeAddress }},
	{[]string{"үүрэн утасны дугаар"}, func(a *Answers) string { return a.PersonalInfo.CurrentAddress.Mobile }},
	{[]string{"утасны дугаар"}, func(a *Answers) string { return a.PersonalInfo.CurrentAddress.Phone }},
	{[]string{"и-мэйл хаяг"}, func(a *Answers) string { return a.PersonalInfo.CurrentAddress.Email }},
	{[]string{"төрсөн он"}, func(a *Answers) string { return a.PersonalInfo.BirthYear }},
	{[]string{"төрсөн сар"}, func(a *Answers) string { return a.PersonalInfo.BirthMonth }},
	{[]string{"төрсөн аймаг", "төрсөн хот"}, func(a *Answers) string { return a.PersonalInfo.BirthAimag }},
	{[]string{"төрсөн сум", "төрсөн дүүрэг"}, func(a *Answers) string { return a.PersonalInfo.BirthSoum }},
	{[]string{"төрсөн газар"}, func(a *Answers) string { return a.PersonalInfo.BirthPlace }},
	{[]string{"нийгмийн гарал"}, func(a *Answers) string { return a.PersonalInfo.SocialOrigin }},
	{[]string{"үндэс", "угсаа"}, func(a *Answers) string { return a.PersonalInfo.Ethnicity }},
	{[]string{"эзэмшсэн боловсрол", "мэргэжил"}, func(a *Answers) string { return firstSchool(a).Degree }},
	{[]string{"төгссөн он", "төгссөн сар"}, func(a *Answers) string { return firstSchool(a).EndDate }},
	{[]string{"ажилд орсон он", "ажилд орсон сар"}, func(a *Answers) string { return firstJob(a).StartDate }},
	{[]string{"ажлаас гарсан он", "ажлаас гарсан сар"}, func(a *Answers) string { return firstJob(a).EndDate }},
	{[]string{"албан тушаал"}, func(a *Answers) string { return firstJob(a).Position }},
	{[]string{"эцэг", "эх"}, func(a *Answers) string { return a.PersonalInfo.FatherName }},
	{[]string{"овог"}, func(a *Answers) string { return a.PersonalInfo.Surname }},
	{[]string{"хүйс"}, func(a *Answers) string { return a.PersonalInfo.Gender }},
	{[]string{"нэр"}, func(a *Answers) string { return a.PersonalInfo.Name }},
}

// AnswerFor 返回与题目文本匹配的答案，没有匹配时返回空串。
func AnswerFor(a *Answers, questionText string) string {
	text := strings.ToLower(questionText)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(text, kw) {
				return r.value(a)
			}
		}
	}
	return ""
}

func firstSchool(a *Answers) School {
	if len(a.Education.GeneralEducation) == 0 {
		return School{}
	}
	return a.Education.GeneralEducation[0]
}

func firstJob(a *Answers) Job {
	if len(a.WorkExperience) == 0 {
		return Job{}
	}
	return a.WorkExperience[0]
}

// Submit 提交通用问卷，每道题生成一条答案。每人只能提交一次。
func (s *Service) Submit(ctx context.Context, user *model.User, id string, answers *Answers) (*model.QuestionnaireResponse, error) {
	if answers == nil {
		return nil, apperr.Validation("Хариулт заавал оруулах шаардлагатай")
	}

	var resp *model.QuestionnaireResponse
	err := s.store.Transaction(ctx, func(tx *storage.Store) error {
		q, err := tx.GetQuestionnaire(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.NotFound(msgNotFound)
		}
		if err != nil {
			return err
		}
		if err := notSubmitted(ctx, tx, q.ID, user.ID); err != nil {
			return err
		}

		r := &model.QuestionnaireResponse{QuestionnaireID: q.ID, UserID: user.ID}
		for _, question := range q.Questions {
			r.Answers = append(r.Answers, model.Answer{QuestionID: question.ID, Value: AnswerFor(answers, question.Text)})
		}
		if err := tx.CreateResponse(ctx, r); err != nil {
			return alreadySubmitted(err)
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("questionnaire_id", id).Str("user_id", user.ID).Int("answers", len(resp.Answers)).Msg("questionnaire submitted")
	return resp, nil
}

func notSubmitted(ctx context.Context, st *storage.Store, questionnaireID, userID string) error {
	done, err := st.HasResponse(ctx, questionnaireID, userID)
	if err != nil {
		return err
	}
	if done {
		return apperr.Validation(msgAlreadyTaken)
	}
	return nil
}

func alreadySubmitted(err error) error {
	if errors.Is(err, storage.ErrDuplicate) {
		return apperr.New(apperr.KindValidation, msgAlreadyTaken, err)
	}
	return err
}
