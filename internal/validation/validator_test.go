package validation_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/storyspine/storyspine-server/internal/errors"
	"github.com/storyspine/storyspine-server/internal/validation"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=1024"`
}

type rateRequest struct {
	Overall   int  `json:"overall" validate:"required,min=1,max=5"`
	Character *int `json:"character,omitempty" validate:"omitempty,min=1,max=5"`
}

type reviewRequest struct {
	Content string `json:"content" validate:"notblank,max=10000"`
}

func intPtr(v int) *int { return &v }

func detailsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())
	details, ok := domainErr.Details.(map[string]string)
	require.True(t, ok)
	return details
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Validate(registerRequest{Username: "reader_1", Email: "r@example.com", Password: "password123"}))
	assert.NoError(t, v.Validate(rateRequest{Overall: 4, Character: intPtr(5)}))
	assert.NoError(t, v.Validate(rateRequest{Overall: 1}))
	assert.NoError(t, v.Validate(reviewRequest{Content: "Loved it"}))
}

func TestValidator_Username(t *testing.T) {
	v := validation.New()

	for _, bad := range []string{"ab", "Has Caps", "with-dash", "waaaaaaaaaaaaaaaaaaaaaaaaaaaaaytoolong"} {
		t.Run(bad, func(t *testing.T) {
			err := v.Validate(registerRequest{Username: bad, Email: "r@example.com", Password: "password123"})
			details := detailsOf(t, err)
			assert.Contains(t, details, "username")
		})
	}
}

func TestValidator_NumericBounds(t *testing.T) {
	v := validation.New()

	err := v.Validate(rateRequest{Overall: 6})
	details := detailsOf(t, err)
	assert.Equal(t, "must not exceed 5", details["overall"])

	err = v.Validate(rateRequest{Overall: 3, Character: intPtr(0)})
	details = detailsOf(t, err)
	assert.Equal(t, "must be at least 1", details["character"])
}

func TestValidator_MissingRequired(t *testing.T) {
	v := validation.New()

	err := v.Validate(rateRequest{})
	details := detailsOf(t, err)
	assert.Equal(t, "is required", details["overall"])
}

func TestValidator_NotBlank(t *testing.T) {
	v := validation.New()

	err := v.Validate(reviewRequest{Content: "   "})
	details := detailsOf(t, err)
	assert.Equal(t, "is required", details["content"])
}

func TestValidator_MultipleErrors(t *testing.T) {
	v := validation.New()

	err := v.Validate(registerRequest{Username: "x", Email: "nope", Password: "short"})
	details := detailsOf(t, err)
	assert.Len(t, details, 3)
	assert.Equal(t, "must be a valid email address", details["email"])
	assert.Equal(t, "must be at least 8 characters", details["password"])
}
