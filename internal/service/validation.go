package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"novelhub/moderation-service/internal/errs"
	"novelhub/moderation-service/internal/models"
	"novelhub/moderation-service/pkg/helpers"
)

// NewValidator returns the form validator with the service's cross-field rules
func NewValidator() *helpers.CustomValidator {
	v := helpers.NewCustomValidator()
	v.RegisterStructValidation(validatePersonDates, models.PersonRequestForm{})
	return v
}

// deathday must be strictly after birthday when both are given
func validatePersonDates(sl validator.StructLevel) {
	form := sl.Current().Interface().(models.PersonRequestForm)
	birthday, deathday := form.Dates()
	if birthday != nil && deathday != nil && !deathday.After(*birthday) {
		sl.ReportError(form.Deathday, "deathday", "Deathday", "after_birthday", "")
	}
}

// validateForm runs the validator and converts failures to a localized ValidationError
func validateForm(ctx context.Context, v *helpers.CustomValidator, form interface{}) error {
	err := v.Validate(form)
	if err == nil {
		return nil
	}
	fields, ok := helpers.ValidationErrorsToMap(err, helpers.LocaleFromContext(ctx))
	if !ok {
		return fmt.Errorf("failed to validate form: %w", err)
	}
	return &errs.ValidationError{Fields: fields, Cause: err}
}

func requiredMessage(ctx context.Context, field string) string {
	t := helpers.GetLocaleTranslations(helpers.LocaleFromContext(ctx))
	return fmt.Sprintf(t.Required, field)
}

func nameTakenMessage(ctx context.Context, name string) string {
	t := helpers.GetLocaleTranslations(helpers.LocaleFromContext(ctx))
	return fmt.Sprintf(t.NameTaken, name)
}
