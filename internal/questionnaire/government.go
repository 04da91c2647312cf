package questionnaire

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"talento/internal/apperr"
	"talento/internal/model"
	"talento/internal/notifier"
	"talento/internal/storage"

	"github.com/xeipuuv/gojsonschema"
	"gorm.io/datatypes"
)

const (
	msgFormRequired  = "Маягтын мэдээлэл заавал оруулах шаардлагатай"
	msgFormInvalid   = "Маягтын мэдээлэл буруу байна"
	msgNotGovernment = "Энэ үйлдэл зөвхөн төрийн албан хаагчийн анкетад зориулагдсан"
	// MsgGovernmentSent 提交成功的提示。
	MsgGovernmentSent = "Анкет амжилттай илгээгдлээ"
)

//go:embed government.schema.json
var governmentSchema string

var formSchema = mustSchema(governmentSchema)

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("government form schema: %v", err))
	}
	return s
}

// GovernmentInput 公务员表单提交请求。
type GovernmentInput struct {
	FormData      json.RawMessage `json:"formData"`
	AttachmentURL string          `json:"attachmentUrl"`
}

// ValidateForm 按 JSON Schema 校验公务员表单。
func ValidateForm(raw []byte) error {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return apperr.Validation(msgFormRequired)
	}
	result, err := formSchema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return apperr.New(apperr.KindValidation, msgFormInvalid, err)
	}
	if result.Valid() {
		return nil
	}
	details := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		details = append(details, e.String())
	}
	return apperr.New(apperr.KindValidation, msgFormInvalid, errors.New(strings.Join(details, "; ")))
}

// SubmitGovernment 提交公务员表单：仅限 GOVERNMENT_EMPLOYEE 问卷，每人一份，
// 保存完整表单及四条摘要答案，并通知问卷所属公司的全部账号。
func (s *Service) SubmitGovernment(ctx context.Context, user *model.User, id string, in GovernmentInput) (*model.QuestionnaireResponse, error) {
	if err := ValidateForm(in.FormData); err != nil {
		return nil, err
	}
	summary, err := summarize(in.FormData)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, msgFormInvalid, err)
	}

	var (
		resp    *model.QuestionnaireResponse
		pending []notifier.Pending
	)
	err = s.store.Transaction(ctx, func(tx *storage.Store) error {
		q, err := tx.GetQuestionnaire(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.NotFound(msgNotFound)
		}
		if err != nil {
			return err
		}
		if q.Type != model.QuestionnaireGovernmentEmployee {
			return apperr.Validation(msgNotGovernment)
		}
		if err := notSubmitted(ctx, tx, q.ID, user.ID); err != nil {
			return err
		}

		r := &model.QuestionnaireResponse{
			QuestionnaireID: q.ID,
			UserID:          user.ID,
			AttachmentURL:   in.AttachmentURL,
			FormData:        datatypes.JSON(in.FormData),
			Answers:         summary,
		}
		if err := tx.CreateResponse(ctx, r); err != nil {
			return alreadySubmitted(err)
		}

		staff, err := tx.ListCompanyUsers(ctx, q.CompanyID)
		if err != nil {
			return err
		}
		n := notifier.GovernmentFormNotice(q.ID, user.Name)
		for i := range staff {
			p, err := s.notify.Record(ctx, tx, notifier.RecipientOf(&staff[i]), n)
			if err != nil {
				return err
			}
			pending = append(pending, p)
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notify.Flush(ctx, pending...)
	s.logger.Info().Str("questionnaire_id", id).Str("user_id", user.ID).Msg("government form submitted")
	return resp, nil
}

type governmentForm struct {
	PersonalInfo   map[string]json.RawMessage `json:"personalInfo"`
	Education      map[string]json.RawMessage `json:"education"`
	WorkExperience json.RawMessage            `json:"workExperience"`
	Skills         json.RawMessage            `json:"skills"`
}

// summarize 提取便于查询的四条摘要答案。
func summarize(raw []byte) ([]model.Answer, error) {
	var form governmentForm
	if err := json.Unmarshal(raw, &form); err != nil {
		return nil, fmt.Errorf("decode government form: %w", err)
	}
	personal, err := json.Marshal(pick(form.PersonalInfo,
		"name", "fatherName", "gender", "birthYear", "birthPlace", "ethnicity", "currentAddress"))
	if err != nil {
		return nil, err
	}
	education, err := json.Marshal(pick(form.Education, "generalEducation", "doctoralDegrees"))
	if err != nil {
		return nil, err
	}
	return []model.Answer{
		{QuestionID: "personal_info", Value: string(personal)},
		{QuestionID: "education_info", Value: string(education)},
		{QuestionID: "work_experience", Value: string(form.WorkExperience)},
		{QuestionID: "skills_info", Value: string(form.Skills)},
	}, nil
}

func pick(m map[string]json.RawMessage, keys ...string) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(keys))
	for _, k := range keys {
		if v, ok := m[k]; ok {
			out[k] = v
		}
	}
	return out
}
