package schema

import (
	"testing"
	"time"

	"talento/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `validate:"required"`
	Email string `validate:"required,email"`
}

func TestCheck(t *testing.T) {
	t.Parallel()

	require.NoError(t, Check(&sample{Name: "a", Email: "a@b.mn"}, "bad"))

	err := Check(&sample{Email: "nope"}, "Заавал бөглөнө үү")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, "Заавал бөглөнө үү", apperr.Message(err, ""))
	assert.Contains(t, err.Error(), "Name:required")
	assert.Contains(t, err.Error(), "Email:email")
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	d, err := ParseDate("2024-02-03")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("2024-02-03T10:30:00+08:00")
	require.NoError(t, err)
	assert.Equal(t, 2, d.UTC().Hour())

	_, err = ParseDate("03/02/2024")
	assert.Error(t, err)

	opt, err := ParseOptionalDate(" ")
	require.NoError(t, err)
	assert.Nil(t, opt)
}
