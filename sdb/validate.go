package sdb

import (
	"errors"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// MaxTextBytes is the service limit for item names, attribute names and values.
const MaxTextBytes = 1024

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("sdbtext", func(fl validator.FieldLevel) bool {
		return textProblem(fl.Field().String()) == ""
	})
	_ = v.RegisterValidation("sdbdomain", func(fl validator.FieldLevel) bool {
		return domainProblem(fl.Field().String()) == ""
	})
	return v
}

// validateConfig maps the first struct validation failure to a ConfigError.
func validateConfig(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		reason := "failed " + fe.Tag()
		if fe.Param() != "" {
			reason += "=" + fe.Param()
		}
		if fe.Tag() == "required" {
			reason = "is required"
		}
		return &ConfigError{Field: fe.Field(), Reason: reason}
	}
	return &ConfigError{Field: "Config", Reason: err.Error()}
}

func checkDomain(name string) error {
	if validate.Var(name, "sdbdomain") != nil {
		return &EncodingError{Field: "domain name", Value: name, Reason: domainProblem(name)}
	}
	return nil
}

func checkText(field, s string) error {
	if validate.Var(s, "sdbtext") != nil {
		return &EncodingError{Field: field, Value: s, Reason: textProblem(s)}
	}
	return nil
}

func checkAttributes(attrs Attributes) error {
	for name, values := range attrs {
		if err := checkText("attribute name", name); err != nil {
			return err
		}
		for _, v := range values {
			if v.IsNull() {
				continue
			}
			if err := checkText("attribute value", v.String()); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkItems(items Items) error {
	for name, attrs := range items {
		if err := checkText("item name", name); err != nil {
			return err
		}
		if err := checkAttributes(attrs); err != nil {
			return err
		}
	}
	return nil
}

// textProblem describes why s is not a valid name or value, or returns "".
func textProblem(s string) string {
	if len(s) > MaxTextBytes {
		return "longer than 1024 bytes"
	}
	if !utf8.ValidString(s) {
		return "not valid UTF-8"
	}
	for _, r := range s {
		if !isXMLChar(r) {
			return "contains a character not allowed in XML"
		}
	}
	return ""
}

// domainProblem describes why name is not a valid domain name, or returns "".
func domainProblem(name string) string {
	if len(name) < 3 || len(name) > 255 {
		return "must be between 3 and 255 characters"
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '_', c == '-', c == '.':
		default:
			return "may only contain a-z, A-Z, 0-9, '_', '-' and '.'"
		}
	}
	return ""
}

func isXMLChar(r rune) bool {
	switch {
	case r == 0x9, r == 0xA, r == 0xD:
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	}
	return false
}
