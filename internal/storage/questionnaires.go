package storage

import (
	"context"

	"talento/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateQuestionnaire 新增问卷及其题目。
func (s *Store) CreateQuestionnaire(ctx context.Context, q *model.Questionnaire) error {
	return translate("create questionnaire", s.db.WithContext(ctx).Create(q).Error)
}

// GetQuestionnaire 获取问卷，题目按顺序返回。
func (s *Store) GetQuestionnaire(ctx context.Context, id string) (*model.Questionnaire, error) {
	var q model.Questionnaire
	err := s.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Where("id = ?", id).
		First(&q).Error
	if err != nil {
		return nil, translate("get questionnaire", err)
	}
	return &q, nil
}

// ListQuestionnaires 返回公司的问卷，最新在前。
func (s *Store) ListQuestionnaires(ctx context.Context, companyID string) ([]model.Questionnaire, error) {
	var out []model.Questionnaire
	if err := s.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, translate("list questionnaires", err)
	}
	return out, nil
}

// ReplaceQuestionnaire 更新问卷字段并整体替换题目。
func (s *Store) ReplaceQuestionnaire(ctx context.Context, q *model.Questionnaire) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("questionnaire_id = ?", q.ID).Delete(&model.Question{}).Error; err != nil {
			return translate("delete questions", err)
		}
		if err := tx.Omit(clause.Associations).Save(q).Error; err != nil {
			return translate("save questionnaire", err)
		}
		for i := range q.Questions {
			q.Questions[i].ID = ""
			q.Questions[i].QuestionnaireID = q.ID
		}
		if len(q.Questions) > 0 {
			if err := tx.Create(&q.Questions).Error; err != nil {
				return translate("create questions", err)
			}
		}
		return nil
	})
}

// UpdateQuestionnaireAttachment 更新问卷附件。
func (s *Store) UpdateQuestionnaireAttachment(ctx context.Context, id, url, name string) error {
	tx := s.db.WithContext(ctx).Model(&model.Questionnaire{}).Where("id = ?", id).
		Updates(map[string]any{"attachment_url": url, "attachment_name": name})
	if tx.Error != nil {
		return translate("update questionnaire attachment", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return translate("update questionnaire attachment", ErrNotFound)
	}
	return nil
}

// DeleteQuestionnaire 删除问卷及其题目、答卷。
func (s *Store) DeleteQuestionnaire(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var responseIDs []string
		if err := tx.Model(&model.QuestionnaireResponse{}).Where("questionnaire_id = ?", id).Pluck("id", &responseIDs).Error; err != nil {
			return translate("list responses", err)
		}
		if len(responseIDs) > 0 {
			if err := tx.Where("response_id IN ?", responseIDs).Delete(&model.Answer{}).Error; err != nil {
				return translate("delete answers", err)
			}
			if err := tx.Where("id IN ?", responseIDs).Delete(&model.QuestionnaireResponse{}).Error; err != nil {
				return translate("delete responses", err)
			}
		}
		if err := tx.Where("questionnaire_id = ?", id).Delete(&model.Question{}).Error; err != nil {
			return translate("delete questions", err)
		}
		if err := tx.Model(&model.JobApplication{}).Where("questionnaire_id = ?", id).Update("questionnaire_id", nil).Error; err != nil {
			return translate("detach applications", err)
		}
		return deleteByID[model.Questionnaire](ctx, tx, "delete questionnaire", id)
	})
}

// HasResponse 判断用户是否已提交过该问卷。
func (s *Store) HasResponse(ctx context.Context, questionnaireID, userID string) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.QuestionnaireResponse{}).
		Where("questionnaire_id = ? AND user_id = ?", questionnaireID, userID).
		Count(&n).Error; err != nil {
		return false, translate("check response", err)
	}
	return n > 0, nil
}

// CreateResponse 写入答卷及答案，重复提交返回 ErrDuplicate。
func (s *Store) CreateResponse(ctx context.Context, r *model.QuestionnaireResponse) error {
	return translate("create response", s.db.WithContext(ctx).Omit("User", "Questionnaire").Create(r).Error)
}

// ListResponses 返回问卷的全部答卷（含答案与提交人）。
func (s *Store) ListResponses(ctx context.Context, questionnaireID string) ([]model.QuestionnaireResponse, error) {
	var out []model.QuestionnaireResponse
	if err := s.db.WithContext(ctx).
		Preload("Answers").Preload("User").
		Where("questionnaire_id = ?", questionnaireID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, translate("list responses", err)
	}
	return out, nil
}

// ListUserResponses 返回用户提交过的答卷（含问卷与答案），最新在前。
func (s *Store) ListUserResponses(ctx context.Context, userID string) ([]model.QuestionnaireResponse, error) {
	var out []model.QuestionnaireResponse
	if err := s.db.WithContext(ctx).
		Preload("Questionnaire").Preload("Answers").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, translate("list user responses", err)
	}
	return out, nil
}
