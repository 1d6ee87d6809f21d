package service

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/inklet-app/inklet/backend/internal/common/constants"
	commonerrors "github.com/inklet-app/inklet/backend/internal/common/errors"
)

// postInput carries the client-editable fields through validation. The word
// bounds match what the web client enforces in its forms; they are repeated
// here so non-browser callers cannot sidestep them.
type postInput struct {
	Title   string `validate:"required,minwords=5,maxwords=8"`
	Content string `validate:"required,maxwords=100"`
}

func newPostValidator() *validator.Validate {
	v := validator.New()

	mustRegister(v, "minwords", func(fl validator.FieldLevel) bool {
		min, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return wordCount(fl.Field().String()) >= min
	})

	mustRegister(v, "maxwords", func(fl validator.FieldLevel) bool {
		max, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return wordCount(fl.Field().String()) <= max
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

func validatePostInput(v *validator.Validate, title, content string) error {
	err := v.Struct(postInput{Title: title, Content: content})
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return validationError("post input is invalid")
	}

	switch verrs[0].Field() {
	case "Title":
		return validationError(fmt.Sprintf("title must be between %d and %d words", constants.TitleMinWords, constants.TitleMaxWords))
	case "Content":
		return validationError(fmt.Sprintf("content must be at most %d words and not empty", constants.ContentMaxWords))
	default:
		return validationError("post input is invalid")
	}
}

func validationError(message string) error {
	return commonerrors.NewDomainError(
		"VALIDATION_FAILED",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		message,
	)
}
