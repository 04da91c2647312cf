// Package hr 实现员工、部门、职位、劳动合同与人事决定的维护逻辑。
package hr

import (
	"errors"
	"time"

	"talento/internal/apperr"
	"talento/internal/storage"

	"github.com/rs/zerolog"
)

const (
	msgRequired = "Заавал оруулах талбаруудыг бүгд бөглөнө үү"
	msgBadDate  = "Огнооны формат буруу байна"
)

// Service HR 业务入口。
type Service struct {
	store  *storage.Store
	logger zerolog.Logger
	now    func() time.Time
}

// New 创建 Service。
func New(store *storage.Store, logger zerolog.Logger) *Service {
	return &Service{store: store, logger: logger, now: time.Now}
}

// notFound 将存储层的 ErrNotFound 转为带消息的 NotFound。
func notFound(err error, msg string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.NotFound(msg)
	}
	return err
}

// duplicate 将唯一约束冲突转为带消息的 Validation。
func duplicate(err error, msg string) error {
	if errors.Is(err, storage.ErrDuplicate) {
		return apperr.New(apperr.KindValidation, msg, err)
	}
	return err
}

func badDate(err error) error {
	return apperr.New(apperr.KindValidation, msgBadDate, err)
}
