package helpers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationErrorResponse represents the validation error response format
type ValidationErrorResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

// LocaleTranslations holds error message translations for different locales
type LocaleTranslations struct {
	Required      string
	Min           string
	Max           string
	OneOf         string
	URL           string
	Date          string
	NotBlank      string
	AfterBirthday string
	NameTaken     string
	Invalid       string
}

var translations = map[string]LocaleTranslations{
	"en": {
		Required:      "The %s field is required",
		Min:           "The %s field must be at least %s characters",
		Max:           "The %s field must not exceed %s characters",
		OneOf:         "The %s field must be one of: %s",
		URL:           "The %s field must be a valid URL",
		Date:          "The %s field must be a date in YYYY-MM-DD format",
		NotBlank:      "The %s field must not be blank",
		AfterBirthday: "Deathday must be after birthday",
		NameTaken:     "\"%s\" already exists. Please pick the existing entry or use another name",
		Invalid:       "The %s field is invalid",
	},
	"vi": {
		Required:      "Trường %s là bắt buộc",
		Min:           "Trường %s phải có ít nhất %s ký tự",
		Max:           "Trường %s không được vượt quá %s ký tự",
		OneOf:         "Trường %s phải là một trong: %s",
		URL:           "Trường %s phải là một URL hợp lệ",
		Date:          "Trường %s phải là ngày theo định dạng YYYY-MM-DD",
		NotBlank:      "Trường %s không được để trống",
		AfterBirthday: "Ngày mất phải sau ngày sinh",
		NameTaken:     "\"%s\" đã tồn tại trong hệ thống. Vui lòng chọn mục có sẵn hoặc sử dụng tên khác",
		Invalid:       "Trường %s không hợp lệ",
	},
}

// GetDefaultLocale returns the default locale
func GetDefaultLocale() string {
	return "en"
}

// GetLocaleTranslations returns translations for a given locale, or default locale if not found
func GetLocaleTranslations(locale string) LocaleTranslations {
	if t, ok := translations[locale]; ok {
		return t
	}
	return translations[GetDefaultLocale()]
}

// ParseAcceptLanguage picks the first supported locale of an Accept-Language header
func ParseAcceptLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		tag = strings.ToLower(strings.SplitN(tag, "-", 2)[0])
		if _, ok := translations[tag]; ok {
			return tag
		}
	}
	return GetDefaultLocale()
}

type localeKey struct{}

// WithLocale stores the request locale on ctx
func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, localeKey{}, locale)
}

// LocaleFromContext returns the request locale or the default one
func LocaleFromContext(ctx context.Context) string {
	if locale, ok := ctx.Value(localeKey{}).(string); ok && locale != "" {
		return locale
	}
	return GetDefaultLocale()
}

// FormatValidationError formats a validator.FieldError into a localized error message
func FormatValidationError(fe validator.FieldError, locale string) string {
	t := GetLocaleTranslations(locale)
	fieldName := getFieldName(fe)

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf(t.Required, fieldName)
	case "min":
		return fmt.Sprintf(t.Min, fieldName, fe.Param())
	case "max":
		return fmt.Sprintf(t.Max, fieldName, fe.Param())
	case "oneof":
		return fmt.Sprintf(t.OneOf, fieldName, fe.Param())
	case "url":
		return fmt.Sprintf(t.URL, fieldName)
	case "datetime":
		return fmt.Sprintf(t.Date, fieldName)
	case "notblank":
		return fmt.Sprintf(t.NotBlank, fieldName)
	case "after_birthday":
		return t.AfterBirthday
	default:
		return fmt.Sprintf(t.Invalid, fieldName)
	}
}

// ValidationErrorsToMap converts the error returned by Validate into field messages.
// The second return value is false when err is not a validation failure.
func ValidationErrorsToMap(err error, locale string) (map[string]string, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = FormatValidationError(fe, locale)
	}
	return fields, true
}

// getFieldName extracts a human-readable field name from the FieldError
func getFieldName(fe validator.FieldError) string {
	return strings.ReplaceAll(strings.ToLower(fe.Field()), "_", " ")
}
