package manager

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/haukened/bindmgr/internal/dns/common/utils"
	"github.com/haukened/bindmgr/internal/dns/domain"
)

// validZoneName accepts anything that normalizes to a usable DNS name, including
// internationalized names.
func validZoneName(fl validator.FieldLevel) bool {
	_, err := utils.NormalizeZoneName(fl.Field().String())
	return err == nil
}

func validRRType(fl validator.FieldLevel) bool {
	return domain.RRTypeFromString(strings.ToUpper(strings.TrimSpace(fl.Field().String()))).IsManaged()
}

func validBindACL(fl validator.FieldLevel) bool {
	return domain.IsACLElement(fl.Field().String())
}

// validMailbox accepts an address or a dotted SOA mailbox.
func validMailbox(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s != "" && !strings.ContainsAny(s, " \t\r\n;()\"") && strings.ContainsAny(s, ".@")
}

// validBindScalar accepts a single unquoted option value such as 256M or unlimited.
func validBindScalar(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s != "" && !strings.ContainsAny(s, " \t\r\n;{}\"#/")
}

// registerValidations wires the BIND specific tags into v.
var registerValidations = func(v *validator.Validate) error {
	for tag, fn := range map[string]validator.Func{
		"zonename":   validZoneName,
		"rrtype":     validRRType,
		"bindacl":    validBindACL,
		"mailbox":    validMailbox,
		"bindscalar": validBindScalar,
	} {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s validation: %w", tag, err)
		}
	}
	return nil
}

func newValidator() (*validator.Validate, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	if err := registerValidations(v); err != nil {
		return nil, err
	}
	return v, nil
}

// invalid turns validator output into a MalformedInput error naming each field.
func invalid(op string, err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.Wrap(domain.KindMalformedInput, op, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s needs at least %s entries", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s: %q is not a valid %s", field, fmt.Sprint(fe.Value()), fe.Tag()))
		}
	}
	return domain.Malformed(op, "%s", strings.Join(msgs, "; "))
}

// checkStruct validates a request struct.
func (m *Manager) checkStruct(op string, v any) error {
	return invalid(op, m.validate.Struct(v))
}

// zoneName validates and normalizes a zone or domain name passed on its own.
func (m *Manager) zoneName(op, raw string) (string, error) {
	if err := m.validate.Var(raw, "required,zonename"); err != nil {
		return "", domain.Malformed(op, "%q is not a valid domain name", raw)
	}
	return utils.NormalizeZoneName(raw)
}
