package auth

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"talento/internal/apperr"
	"talento/internal/model"
	"talento/internal/schema"
	"talento/internal/storage"
)

const (
	msgRegisterFields = "Бүх талбаруудыг бөглөх шаардлагатай"
	msgShortPassword  = "Нууц үг хамгийн багадаа 6 тэмдэгт байх ёстой"
	msgEmailTaken     = "Энэ имэйл хаяг аль хэдийн бүртгэгдсэн байна"
	msgBadLogin       = "Имэйл эсвэл нууц үг буруу байна"
	msgEmptyName      = "Нэр хоосон байж болохгүй"
	msgBadFacebook    = "Facebook холбоос буруу байна"
	msgNoProfileField = "Шинэчлэх мэдээлэл оруулна уу"
)

const minPasswordLen = 6

// RegisterInput 注册请求。
type RegisterInput struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	PhoneNumber string `json:"phoneNumber"`
}

// EmployerInput 雇主注册请求，同时创建公司。
type EmployerInput struct {
	RegisterInput
	CompanyName        string `json:"companyName" validate:"required"`
	CompanyDescription string `json:"companyDescription"`
	Location           string `json:"location"`
}

// LoginInput 登录请求。
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileInput 个人资料更新。nil 字段保持不变。
type ProfileInput struct {
	Name        *string `json:"name"`
	PhoneNumber *string `json:"phoneNumber"`
	FacebookURL *string `json:"facebookUrl"`
}

// Token 登录成功后返回给客户端的凭证。
type Token struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      *model.User `json:"user"`
}

// Accounts 负责账号注册与登录。
type Accounts struct {
	store *storage.Store
	auth  *Service
}

// NewAccounts 创建 Accounts。
func NewAccounts(store *storage.Store, auth *Service) *Accounts {
	return &Accounts{store: store, auth: auth}
}

// Register 创建指定角色的账号。
func (a *Accounts) Register(ctx context.Context, in RegisterInput, role model.Role) (*model.User, error) {
	in.normalize()
	if err := schema.Check(&in, msgRegisterFields); err != nil {
		return nil, err
	}
	if !role.Valid() {
		role = model.RoleJobSeeker
	}
	u, err := a.newUser(in, role)
	if err != nil {
		return nil, err
	}
	if err := a.store.CreateUser(ctx, u); err != nil {
		return nil, taken(err)
	}
	return u, nil
}

// RegisterEmployer 在同一事务中创建公司与雇主账号。
func (a *Accounts) RegisterEmployer(ctx context.Context, in EmployerInput) (*model.User, error) {
	in.RegisterInput.normalize()
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	if err := schema.Check(&in, msgRegisterFields); err != nil {
		return nil, err
	}
	u, err := a.newUser(in.RegisterInput, model.RoleEmployer)
	if err != nil {
		return nil, err
	}
	err = a.store.Transaction(ctx, func(tx *storage.Store) error {
		company := &model.Company{Name: in.CompanyName, Description: in.CompanyDescription, Location: in.Location}
		if err := tx.CreateCompany(ctx, company); err != nil {
			return err
		}
		u.CompanyID = &company.ID
		return taken(tx.CreateUser(ctx, u))
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Login 校验密码并签发 token。
func (a *Accounts) Login(ctx context.Context, in LoginInput) (*Token, error) {
	in.Email = normalizeEmail(in.Email)
	if err := schema.Check(&in, msgBadLogin); err != nil {
		return nil, err
	}
	u, err := a.store.GetUserByEmail(ctx, in.Email)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.Unauthorized(msgBadLogin)
	}
	if err != nil {
		return nil, err
	}
	if !a.auth.CheckPassword(u.PasswordHash, in.Password) {
		return nil, apperr.Unauthorized(msgBadLogin)
	}
	token, exp, err := a.auth.Issue(u)
	if err != nil {
		return nil, err
	}
	return &Token{Token: token, ExpiresAt: exp, User: u}, nil
}

// UpdateProfile 更新姓名、电话与 Facebook 链接，返回更新后的账号。
func (a *Accounts) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*model.User, error) {
	fields := make(map[string]any)
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.Validation(msgEmptyName)
		}
		fields["name"] = name
	}
	if in.PhoneNumber != nil {
		fields["phone_number"] = strings.TrimSpace(*in.PhoneNumber)
	}
	if in.FacebookURL != nil {
		link := struct {
			URL string `validate:"omitempty,url"`
		}{URL: strings.TrimSpace(*in.FacebookURL)}
		if err := schema.Check(&link, msgBadFacebook); err != nil {
			return nil, err
		}
		fields["facebook_url"] = link.URL
	}
	if len(fields) == 0 {
		return nil, apperr.Validation(msgNoProfileField)
	}
	if err := a.store.UpdateUserProfile(ctx, userID, fields); err != nil {
		return nil, err
	}
	return a.store.GetUser(ctx, userID)
}

func (a *Accounts) newUser(in RegisterInput, role model.Role) (*model.User, error) {
	if utf8.RuneCountInString(in.Password) < minPasswordLen {
		return nil, apperr.Validation(msgShortPassword)
	}
	hash, err := a.auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	return &model.User{
		Name:         in.Name,
		Email:        in.Email,
		PhoneNumber:  in.PhoneNumber,
		PasswordHash: hash,
		Role:         role,
	}, nil
}

// normalize 去除首尾空白并将邮箱转为小写，须在校验前调用。
func (in *RegisterInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func taken(err error) error {
	if errors.Is(err, storage.ErrDuplicate) {
		return apperr.New(apperr.KindValidation, msgEmailTaken, err)
	}
	return err
}
