package validators

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	nonstandard "github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/portfolio-studio/engine/internal/models"
)

// Aggregate field names accepted by Validate. They match the JSON names of OnboardingData.
const (
	FieldPersonalInfo   = "personalInfo"
	FieldResume         = "resume"
	FieldSkills         = "skills"
	FieldWorkExperience = "workExperience"
	FieldEducation      = "education"
	FieldProjects       = "projects"
	FieldContactForm    = "contactForm"
	FieldDeployment     = "deployment"
)

// AllFields lists the aggregate fields in form order.
func AllFields() []string {
	return []string{
		FieldPersonalInfo,
		FieldResume,
		FieldSkills,
		FieldWorkExperience,
		FieldEducation,
		FieldProjects,
		FieldContactForm,
		FieldDeployment,
	}
}

// FieldError is one failed rule, addressed by its JSON path (e.g. "projects[1].tags").
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Result is the outcome of a validation pass.
type Result struct {
	Valid  bool         `json:"valid"`
	Errors []FieldError `json:"errors,omitempty"`
}

// For returns the errors whose path starts with field.
func (r Result) For(field string) []FieldError {
	var out []FieldError
	for _, fe := range r.Errors {
		if fe.Field == field || strings.HasPrefix(fe.Field, field+".") || strings.HasPrefix(fe.Field, field+"[") {
			out = append(out, fe)
		}
	}
	return out
}

// Err folds the result into a single error, nil when valid.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, fe := range r.Errors {
		msgs = append(msgs, fe.Field+": "+fe.Message)
	}
	return fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
}

// Validator checks content entities against their schema.
type Validator struct {
	v *validator.Validate
}

// New builds a Validator with the content rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", nonstandard.NotBlank)
	v.RegisterStructValidation(contactConfigRules, models.ContactConfig{})
	v.RegisterStructValidation(resumeRules, models.ResumeMeta{})
	return &Validator{v: v}
}

// Validate checks only the named aggregate fields; no names means every field.
// Unknown names are ignored. Cross-field rules read the current aggregate values.
func (val *Validator) Validate(data models.OnboardingData, fields ...string) Result {
	if len(fields) == 0 {
		fields = AllFields()
	}
	var errs []FieldError
	for _, f := range fields {
		switch f {
		case FieldPersonalInfo:
			errs = append(errs, val.structErrors(FieldPersonalInfo, data.PersonalInfo)...)
		case FieldResume:
			errs = append(errs, val.structErrors(FieldResume, data.Resume)...)
		case FieldSkills:
			errs = append(errs, val.varErrors(FieldSkills, data.Skills, "min=1,max=50,dive,notblank,max=50")...)
		case FieldWorkExperience:
			for i, w := range data.WorkExperience {
				errs = append(errs, val.structErrors(fmt.Sprintf("%s[%d]", FieldWorkExperience, i), w)...)
			}
		case FieldEducation:
			for i, e := range data.Education {
				errs = append(errs, val.structErrors(fmt.Sprintf("%s[%d]", FieldEducation, i), e)...)
			}
		case FieldProjects:
			for i, p := range data.Projects {
				errs = append(errs, val.structErrors(fmt.Sprintf("%s[%d]", FieldProjects, i), p)...)
			}
		case FieldContactForm:
			errs = append(errs, val.structErrors(FieldContactForm, data.ContactForm)...)
		case FieldDeployment:
			errs = append(errs, val.structErrors(FieldDeployment, data.Deployment)...)
		}
	}
	return Result{Valid: len(errs) == 0, Errors: errs}
}

func (val *Validator) structErrors(prefix string, s any) []FieldError {
	return translate(prefix, val.v.Struct(s), true)
}

func (val *Validator) varErrors(prefix string, field any, tag string) []FieldError {
	return translate(prefix, val.v.Var(field, tag), false)
}

func translate(prefix string, err error, nested bool) []FieldError {
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return []FieldError{{Field: prefix, Rule: "invalid", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(ves))
	for _, fe := range ves {
		path := prefix
		switch {
		case nested && fe.Field() != "":
			path = prefix + "." + fe.Field()
		case !nested && strings.HasPrefix(fe.Field(), "["):
			path = prefix + fe.Field()
		}
		out = append(out, FieldError{Field: path, Rule: fe.Tag(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	isList := fe.Kind() == reflect.Slice || fe.Kind() == reflect.Array
	switch tag := fe.Tag(); {
	case tag == "required", tag == "notblank":
		return "is required"
	case tag == "max" && isList:
		return fmt.Sprintf("must have at most %s items", fe.Param())
	case tag == "max":
		return fmt.Sprintf("must be less than %s characters", fe.Param())
	case tag == "min" && isList:
		return fmt.Sprintf("must have at least %s item(s)", fe.Param())
	case tag == "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case tag == "email":
		return "must be a valid email address"
	case tag == "url":
		return "must be a valid URL"
	case strings.HasPrefix(tag, "contains"):
		return "must be a valid " + hostLabel(fe.Field()) + " URL"
	case tag == "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case tag == "endpoint_required":
		return fmt.Sprintf("is required when the contact service is %s", fe.Param())
	case tag == "resume_file":
		return "must be set when resume details are present"
	case tag == "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	}
	return "is invalid"
}

func hostLabel(field string) string {
	switch field {
	case "github":
		return "GitHub"
	case "linkedin":
		return "LinkedIn"
	case "twitter":
		return "Twitter/X"
	}
	return field
}

func contactConfigRules(sl validator.StructLevel) {
	c, ok := sl.Current().Interface().(models.ContactConfig)
	if !ok {
		return
	}
	if c.Service.RequiresEndpoint() && strings.TrimSpace(c.Endpoint) == "" {
		sl.ReportError(c.Endpoint, "endpoint", "Endpoint", "endpoint_required", string(c.Service))
	}
}

func resumeRules(sl validator.StructLevel) {
	r, ok := sl.Current().Interface().(models.ResumeMeta)
	if !ok {
		return
	}
	if r.FileName == "" && !r.Empty() {
		sl.ReportError(r.FileName, "fileName", "FileName", "resume_file", "")
	}
}
