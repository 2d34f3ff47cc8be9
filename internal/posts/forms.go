package posts

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type PostForm struct {
	Title   string `validate:"omitempty,max=100"`
	Text    string `validate:"required"`
	GroupID string `validate:"omitempty,uuid4"`
}

type CommentForm struct {
	Text string `validate:"required"`
}

func (f PostForm) Validate() map[string]string {
	return fieldErrors(validate.Struct(f))
}

func (f CommentForm) Validate() map[string]string {
	return fieldErrors(validate.Struct(f))
}

func fieldErrors(err error) map[string]string {
	if err == nil {
		return map[string]string{}
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"": err.Error()}
	}

	out := map[string]string{}
	for _, fe := range verrs {
		out[fe.Field()] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "uuid4":
		return "select a valid group"
	default:
		return "invalid value"
	}
}
