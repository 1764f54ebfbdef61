package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestClassify_PassesThroughClassified(t *testing.T) {
	orig := NotFound("Location %s not found", "abc")
	wrapped := fmt.Errorf("lookup: %w", orig)

	got := Classify(wrapped)

	assert.Same(t, orig, got)
	assert.Equal(t, KindNotFound, KindOf(got))
}

func TestClassify_Nil(t *testing.T) {
	assert.NoError(t, Classify(nil))
}

func TestClassify_ValidationError(t *testing.T) {
	v := validator.New()
	err := v.Struct(struct {
		Latitude float64 `validate:"gte=-90,lte=90"`
	}{Latitude: 120})
	require.Error(t, err)

	got := Classify(err)
	assert.Equal(t, KindBadRequest, KindOf(got))
}

func TestClassify_DuplicateKey(t *testing.T) {
	err := mongo.WriteException{
		WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}},
	}

	got := Classify(fmt.Errorf("insert location: %w", err))
	assert.Equal(t, KindConflict, KindOf(got))
}

func TestClassify_AuthenticationFailed(t *testing.T) {
	err := mongo.CommandError{Code: 13, Message: "Authentication failed."}

	got := Classify(err)

	var appErr *Error
	require.True(t, errors.As(got, &appErr))
	assert.Equal(t, KindInternal, appErr.Kind)
	assert.Equal(t, "database authentication failed", appErr.Message)
}

func TestClassify_OtherServerError(t *testing.T) {
	err := mongo.CommandError{Code: 2, Message: "BadValue"}

	var appErr *Error
	require.True(t, errors.As(Classify(err), &appErr))
	assert.Equal(t, "database operation failed", appErr.Message)
}

func TestClassify_Unknown(t *testing.T) {
	var appErr *Error
	require.True(t, errors.As(Classify(errors.New("boom")), &appErr))
	assert.Equal(t, KindInternal, appErr.Kind)
	assert.Equal(t, "an unexpected error occurred", appErr.Message)
	assert.EqualError(t, appErr, "an unexpected error occurred: boom")
}

func TestKindOf_Unclassified(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.Equal(t, KindConflict, KindOf(Conflict("Location '%s' exists", "Vienna")))
	assert.Equal(t, KindBadRequest, KindOf(BadRequest("Invalid location ID format")))
}
