package storage

import (
	"context"

	"talento/internal/model"
)

// CreateUser 新增账号，邮箱重复返回 ErrDuplicate。
func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	return translate("create user", s.db.WithContext(ctx).Create(u).Error)
}

// GetUser 根据 ID 获取账号。
func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	return first[model.User](ctx, s.db, "get user", "id = ?", []any{id})
}

// GetUserByEmail 根据邮箱获取账号。
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return first[model.User](ctx, s.db, "get user by email", "email = ?", []any{email})
}

// UpdateUserProfile 只更新 fields 中出现的列。
func (s *Store) UpdateUserProfile(ctx context.Context, id string, fields map[string]any) error {
	tx := s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return translate("update user profile", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return translate("update user profile", ErrNotFound)
	}
	return nil
}

// ListUsersByRole 返回指定角色的全部账号。
func (s *Store) ListUsersByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	var users []model.User
	if err := s.db.WithContext(ctx).Where("role = ?", role).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, translate("list users by role", err)
	}
	return users, nil
}

// ListCompanyUsers 返回属于公司的账号。
func (s *Store) ListCompanyUsers(ctx context.Context, companyID string) ([]model.User, error) {
	var users []model.User
	if err := s.db.WithContext(ctx).Where("company_id = ?", companyID).Find(&users).Error; err != nil {
		return nil, translate("list company users", err)
	}
	return users, nil
}

// CountUsers 按角色统计账号数，role 为空时统计全部。
func (s *Store) CountUsers(ctx context.Context, role model.Role) (int64, error) {
	var n int64
	q := s.db.WithContext(ctx).Model(&model.User{})
	if role != "" {
		q = q.Where("role = ?", role)
	}
	if err := q.Count(&n).Error; err != nil {
		return 0, translate("count users", err)
	}
	return n, nil
}

// CreateCompany 新增公司。
func (s *Store) CreateCompany(ctx context.Context, c *model.Company) error {
	return translate("create company", s.db.WithContext(ctx).Create(c).Error)
}

// GetCompany 根据 ID 获取公司。
func (s *Store) GetCompany(ctx context.Context, id string) (*model.Company, error) {
	return first[model.Company](ctx, s.db, "get company", "id = ?", []any{id})
}

// UpdateCompanyLogo 更新公司 logo 地址。
func (s *Store) UpdateCompanyLogo(ctx context.Context, id, logo string) error {
	tx := s.db.WithContext(ctx).Model(&model.Company{}).Where("id = ?", id).Update("logo", logo)
	if tx.Error != nil {
		return translate("update company logo", tx.Error)
	}
	if tx.RowsAffected == 0 {
		return translate("update company logo", ErrNotFound)
	}
	return nil
}

// CountCompanies 统计公司数量。
func (s *Store) CountCompanies(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.Company{}).Count(&n).Error; err != nil {
		return 0, translate("count companies", err)
	}
	return n, nil
}
