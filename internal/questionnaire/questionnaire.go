// Package questionnaire 维护雇主问卷，并处理求职者的答卷与公务员表单提交。
package questionnaire

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"talento/internal/apperr"
	"talento/internal/model"
	"talento/internal/notifier"
	"talento/internal/schema"
	"talento/internal/storage"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
)

const (
	msgNotFound     = "Асуулга олдсонгүй"
	msgNotOwner     = "Энэ асуулгыг өөрчлөх эрхгүй байна"
	msgRequired     = "Гарчиг болон асуултууд заавал оруулах шаардлагатай"
	msgNoCompany    = "Компани олдсонгүй"
	msgAppNotFound  = "Өргөдөл олдсонгүй"
	msgAlreadyTaken = "Та энэ асуулгыг аль хэдийн бөглөсөн байна"
)

// QuestionInput 题目请求。
type QuestionInput struct {
	Text     string   `json:"text" validate:"required"`
	Type     string   `json:"type" validate:"omitempty,oneof=TEXT SINGLE_CHOICE MULTIPLE_CHOICE"`
	Required bool     `json:"required"`
	Options  []string `json:"options"`
	Order    int      `json:"order"`
}

// Input 问卷请求。
type Input struct {
	Title          string          `json:"title" validate:"required"`
	Description    string          `json:"description"`
	Type           string          `json:"type" validate:"omitempty,oneof=CUSTOM GOVERNMENT_EMPLOYEE"`
	AttachmentURL  string          `json:"attachmentUrl"`
	AttachmentName string          `json:"attachmentFile"`
	Questions      []QuestionInput `json:"questions" validate:"required,dive"`
}

// Service 问卷业务入口。
type Service struct {
	store  *storage.Store
	notify *notifier.Dispatcher
	logger zerolog.Logger
}

// New 创建 Service。notify 为 nil 时只写站内通知。
func New(store *storage.Store, notify *notifier.Dispatcher, logger zerolog.Logger) *Service {
	if notify == nil {
		notify = notifier.NewDispatcher(logger, nil)
	}
	return &Service{store: store, notify: notify, logger: logger}
}

// Create 为雇主所在公司新建问卷。
func (s *Service) Create(ctx context.Context, owner *model.User, in Input) (*model.Questionnaire, error) {
	companyID, err := companyOf(owner)
	if err != nil {
		return nil, err
	}
	if err := schema.Check(&in, msgRequired); err != nil {
		return nil, err
	}
	q := &model.Questionnaire{CompanyID: companyID}
	if err := apply(q, in); err != nil {
		return nil, err
	}
	if err := s.store.CreateQuestionnaire(ctx, q); err != nil {
		return nil, err
	}
	s.logger.Info().Str("questionnaire_id", q.ID).Int("questions", len(q.Questions)).Msg("questionnaire created")
	return s.store.GetQuestionnaire(ctx, q.ID)
}

// Get 获取问卷，题目按顺序排列。
func (s *Service) Get(ctx context.Context, id string) (*model.Questionnaire, error) {
	q, err := s.store.GetQuestionnaire(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound(msgNotFound)
	}
	return q, err
}

// List 返回雇主所在公司的问卷。
func (s *Service) List(ctx context.Context, owner *model.User) ([]model.Questionnaire, error) {
	companyID, err := companyOf(owner)
	if err != nil {
		return nil, err
	}
	return s.store.ListQuestionnaires(ctx, companyID)
}

// Update 更新问卷并整体替换题目。
func (s *Service) Update(ctx context.Context, owner *model.User, id string, in Input) (*model.Questionnaire, error) {
	if err := schema.Check(&in, msgRequired); err != nil {
		return nil, err
	}
	q, err := s.owned(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if err := apply(q, in); err != nil {
		return nil, err
	}
	if err := s.store.ReplaceQuestionnaire(ctx, q); err != nil {
		return nil, err
	}
	return s.store.GetQuestionnaire(ctx, id)
}

// Delete 删除问卷及其答卷。
func (s *Service) Delete(ctx context.Context, owner *model.User, id string) error {
	if _, err := s.owned(ctx, owner, id); err != nil {
		return err
	}
	return s.store.DeleteQuestionnaire(ctx, id)
}

// Responses 返回问卷的全部答卷。
func (s *Service) Responses(ctx context.Context, owner *model.User, id string) ([]model.QuestionnaireResponse, error) {
	if _, err := s.owned(ctx, owner, id); err != nil {
		return nil, err
	}
	return s.store.ListResponses(ctx, id)
}

// SetAttachment 记录已上传的问卷附件。
func (s *Service) SetAttachment(ctx context.Context, owner *model.User, id, url, name string) error {
	if _, err := s.owned(ctx, owner, id); err != nil {
		return err
	}
	return s.store.UpdateQuestionnaireAttachment(ctx, id, url, name)
}

// Send 将问卷关联到申请并通知申请人。申请与问卷都须属于雇主所在公司。
func (s *Service) Send(ctx context.Context, owner *model.User, applicationID, questionnaireID string) error {
	var pending []notifier.Pending
	err := s.store.Transaction(ctx, func(tx *storage.Store) error {
		app, err := tx.GetApplication(ctx, applicationID)
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.NotFound(msgAppNotFound)
		}
		if err != nil {
			return err
		}
		if owner == nil || owner.CompanyID == nil || app.Job == nil || app.Job.CompanyID != *owner.CompanyID {
			return apperr.Forbidden(msgNotOwner)
		}
		q, err := ownedBy(ctx, tx, owner, questionnaireID)
		if err != nil {
			return err
		}
		if err := tx.SetApplicationQuestionnaire(ctx, app.ID, q.ID); err != nil {
			return err
		}

		to := notifier.RecipientOf(app.User)
		to.UserID = app.UserID
		p, err := s.notify.Record(ctx, tx, to, notifier.QuestionnaireSentNotice(q.ID, q.Title))
		if err != nil {
			return err
		}
		pending = append(pending, p)
		return nil
	})
	if err != nil {
		return err
	}
	s.notify.Flush(ctx, pending...)
	s.logger.Info().Str("application_id", applicationID).Str("questionnaire_id", questionnaireID).Msg("questionnaire sent")
	return nil
}

func (s *Service) owned(ctx context.Context, owner *model.User, id string) (*model.Questionnaire, error) {
	return ownedBy(ctx, s.store, owner, id)
}

func ownedBy(ctx context.Context, st *storage.Store, owner *model.User, id string) (*model.Questionnaire, error) {
	companyID, err := companyOf(owner)
	if err != nil {
		return nil, err
	}
	q, err := st.GetQuestionnaire(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound(msgNotFound)
	}
	if err != nil {
		return nil, err
	}
	if q.CompanyID != companyID {
		return nil, apperr.Forbidden(msgNotOwner)
	}
	return q, nil
}

func companyOf(u *model.User) (string, error) {
	if u == nil || u.CompanyID == nil || *u.CompanyID == "" {
		return "", apperr.NotFound(msgNoCompany)
	}
	return *u.CompanyID, nil
}

func apply(q *model.Questionnaire, in Input) error {
	q.Title = in.Title
	q.Description = in.Description
	q.Type = model.QuestionnaireType(in.Type)
	if q.Type == "" {
		q.Type = model.QuestionnaireCustom
	}
	q.AttachmentURL = in.AttachmentURL
	q.AttachmentName = in.AttachmentName

	q.Questions = make([]model.Question, 0, len(in.Questions))
	for i, qi := range in.Questions {
		question := model.Question{
			Text:     qi.Text,
			Type:     model.QuestionType(qi.Type),
			Required: qi.Required,
			Order:    qi.Order,
		}
		if question.Type == "" {
			question.Type = model.QuestionText
		}
		if question.Order == 0 {
			question.Order = i + 1
		}
		if len(qi.Options) > 0 {
			raw, err := json.Marshal(qi.Options)
			if err != nil {
				return fmt.Errorf("encode options: %w", err)
			}
			question.Options = datatypes.JSON(raw)
		}
		q.Questions = append(q.Questions, question)
	}
	return nil
}
