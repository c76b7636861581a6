package http

import (
	"strings"
	"sync"

	"github.com/dkeye/Estimate/internal/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var validatorOnce sync.Once

var (
	knownRoles = map[string]struct{}{
		"GROUP_A": {}, "GROUP_B": {}, "OBSERVER": {},
		"DEV": {}, "QA": {}, "VOTER": {}, "ESTIMATOR": {},
	}
	knownModes = map[string]struct{}{
		"UNIFIED": {}, "SPLIT": {}, "STANDARD": {}, "DEV_QA": {}, "SPLIT_MODE": {},
	}
)

func registerValidators() {
	validatorOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		// Blank names are allowed; the room falls back to a default host name.
		_ = engine.RegisterValidation("displayname", func(fl validator.FieldLevel) bool {
			raw := fl.Field().String()
			if strings.TrimSpace(raw) == "" {
				return true
			}
			_, err := domain.NormalizeDisplayName(raw)
			return err == nil
		})
		_ = engine.RegisterValidation("role", func(fl validator.FieldLevel) bool {
			return oneOf(knownRoles, fl.Field().String())
		})
		_ = engine.RegisterValidation("mode", func(fl validator.FieldLevel) bool {
			return oneOf(knownModes, fl.Field().String())
		})
	})
}

func oneOf(set map[string]struct{}, raw string) bool {
	_, ok := set[strings.ToUpper(strings.TrimSpace(raw))]
	return ok
}
