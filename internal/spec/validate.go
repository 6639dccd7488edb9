package spec

import (
    "errors"
    "fmt"
    "reflect"
    "strings"

    "github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
    v := validator.New()
    // Report field paths in catalog vocabulary rather than Go names.
    v.RegisterTagNameFunc(func(f reflect.StructField) string {
        name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
        if name == "" || name == "-" {
            return f.Name
        }
        return name
    })
    return v
}

// Validate checks struct constraints and cross references of a decoded
// catalog. location is only used for error reporting.
func Validate(cat *Catalog, location string) error {
    if cat == nil {
        return &SpecError{Code: InputError, Message: "spec: nil catalog", Location: location}
    }
    if err := validate.Struct(cat); err != nil {
        var verrs validator.ValidationErrors
        if errors.As(err, &verrs) && len(verrs) > 0 {
            msgs := make([]string, 0, len(verrs))
            for _, fe := range verrs {
                msgs = append(msgs, fieldPath(fe)+": "+formatFieldError(fe))
            }
            return &SpecError{
                Code:     ValidationError,
                Message:  "spec: invalid catalog: " + strings.Join(msgs, "; "),
                Location: location,
                Path:     fieldPath(verrs[0]),
                Cause:    err,
            }
        }
        return &SpecError{Code: ValidationError, Message: err.Error(), Location: location, Cause: err}
    }

    seenModels := make(map[string]struct{}, len(cat.Models))
    for i, m := range cat.Models {
        if _, dup := seenModels[m.Name]; dup {
            return &SpecError{Code: ValidationError, Message: fmt.Sprintf("spec: duplicate model %q", m.Name), Location: location, Path: fmt.Sprintf("models[%d].name", i)}
        }
        seenModels[m.Name] = struct{}{}
    }
    seenClasses := make(map[string]struct{}, len(cat.Classes))
    for i, c := range cat.Classes {
        if _, dup := seenClasses[c.Name]; dup {
            return &SpecError{Code: ValidationError, Message: fmt.Sprintf("spec: duplicate class %q", c.Name), Location: location, Path: fmt.Sprintf("classes[%d].name", i)}
        }
        seenClasses[c.Name] = struct{}{}
    }
    return nil
}

// fieldPath drops the root type name from the validator namespace.
func fieldPath(fe validator.FieldError) string {
    ns := fe.Namespace()
    if _, rest, ok := strings.Cut(ns, "."); ok {
        return rest
    }
    return ns
}

func formatFieldError(fe validator.FieldError) string {
    switch fe.Tag() {
    case "required":
        return "required"
    case "required_without":
        return fmt.Sprintf("required when %s is empty", strings.ToLower(fe.Param()))
    case "oneof":
        return fmt.Sprintf("must be one of: %s", fe.Param())
    default:
        if fe.Param() != "" {
            return fmt.Sprintf("failed %s=%s validation", fe.Tag(), fe.Param())
        }
        return fmt.Sprintf("failed %s validation", fe.Tag())
    }
}
