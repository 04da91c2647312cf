// Package schema 在边界处校验请求结构体，并解析请求中常见的日期格式。
package schema

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"talento/internal/apperr"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Check 按 validate 标签校验 v，失败时返回携带 msg 的 Validation 错误。
func Check(v any, msg string) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperr.New(apperr.KindValidation, msg, fmt.Errorf("%s", Fields(verrs)))
	}
	return apperr.New(apperr.KindValidation, msg, err)
}

// Fields 将校验错误汇总为 "field:tag" 列表。
func Fields(verrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fe.Field()+":"+fe.Tag())
	}
	return strings.Join(parts, ", ")
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// ParseDate 接受 RFC3339、datetime-local 与纯日期三种格式，纯日期按 UTC 解析。
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// ParseOptionalDate 空串返回 nil。
func ParseOptionalDate(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
