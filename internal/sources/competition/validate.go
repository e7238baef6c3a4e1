package competition

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("ipschema", func(fl validator.FieldLevel) bool {
		return ValidateIPSchema(fl.Field().String()) == nil
	}); err != nil {
		panic(fmt.Sprintf("failed to register ipschema validator: %v", err))
	}
	return v
}

// Validate checks the struct constraints of cfg plus the cross-entry rules:
// team ids, team passwords and catalog service names must be unique.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("competition config is nil")
	}
	if err := validate.Struct(cfg); err != nil {
		return describe(err)
	}

	ids := make(map[int]string, len(cfg.Teams))
	passwords := make(map[string]string, len(cfg.Teams))
	for key, team := range cfg.Teams {
		if other, ok := ids[team.ID]; ok {
			return fmt.Errorf("teams %s and %s share id %d", other, key, team.ID)
		}
		ids[team.ID] = key

		if other, ok := passwords[team.Password]; ok {
			return fmt.Errorf("teams %s and %s share a password", other, key)
		}
		passwords[team.Password] = key
	}

	names := make(map[string]string)
	for box, vm := range cfg.VirtualMachines {
		for svc := range vm.Services {
			name := ServiceName(box, svc)
			where := box + "/" + svc
			if other, ok := names[name]; ok {
				return fmt.Errorf("services %s and %s share the name %s", other, where, name)
			}
			names[name] = where
		}
	}

	return nil
}

// describe turns validator errors into one readable message.
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid competition file: %s", strings.Join(msgs, "; "))
}

// ValidateIPSchema checks a VM address template: four dot-separated
// octets, the first two numeric, the last two numeric or "T" (the team
// number), with at most one "T".
func ValidateIPSchema(schema string) error {
	parts := strings.Split(schema, ".")
	if len(parts) != 4 {
		return fmt.Errorf("ip-schema must have 4 octets, got %d", len(parts))
	}

	for i, part := range parts[:2] {
		if !isOctet(part) {
			return fmt.Errorf("octet %d (%s) is not a valid number", i+1, part)
		}
	}

	teamOctets := 0
	for i, part := range parts[2:] {
		if strings.EqualFold(part, "T") {
			teamOctets++
			continue
		}
		if !isOctet(part) {
			return fmt.Errorf("octet %d (%s) is not a valid number or 'T'", i+3, part)
		}
	}
	if teamOctets > 1 {
		return errors.New("only one of the third or fourth octet can be 'T'")
	}

	return nil
}

func isOctet(s string) bool {
	n, err := strconv.Atoi(s)
	return err == nil && n >= 0 && n <= 255
}
