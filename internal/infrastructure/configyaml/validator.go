package configyaml

import (
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/grochmal/harmonia/internal/domain/uri"
)

var (
	validatorOnce sync.Once
	validatorInst *validator.Validate
)

// validatorInstance lazily builds a shared *validator.Validate with the
// uri_scheme custom tag, mirroring the teacher's sync.Once-guarded
// validatorInstance() in internal/config/validator.go.
func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()
		_ = v.RegisterValidation("uri_scheme", func(fl validator.FieldLevel) bool {
			return uri.HasScheme(fl.Field().String()) == nil
		})
		validatorInst = v
	})
	return validatorInst
}

// Validate runs struct-tag validation over a parsed Document.
func Validate(doc *Document) error {
	return validatorInstance().Struct(doc)
}
