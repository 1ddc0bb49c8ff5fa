package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"renodevis/internal/core/apperror"
	"renodevis/internal/domain/pricing"
)

var registerOnce sync.Once

// RegisterValidators installs the custom rules on gin's validator engine.
// Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonName)
		v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
		_ = v.RegisterValidation("vat", validateVAT)
	})
}

// jsonName reports fields by their JSON key.
func jsonName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// decimalValue lets numeric rules (gte, max) apply to decimals.
func decimalValue(v reflect.Value) any {
	d, ok := v.Interface().(decimal.Decimal)
	if !ok {
		return nil
	}
	f, _ := d.Float64()
	return f
}

func validateVAT(fl validator.FieldLevel) bool {
	switch v := fl.Field().Interface().(type) {
	case float64:
		return pricing.ValidateVATRate(decimal.NewFromFloat(v)) == nil
	case decimal.Decimal:
		return pricing.ValidateVATRate(v) == nil
	}
	return false
}

// BindJSON decodes the request body into obj and converts binding failures
// into a validation AppError listing one message per field.
func BindJSON(c *gin.Context, obj any) error {
	return bindError(c.ShouldBindJSON(obj))
}

// BindQuery binds query parameters into obj.
func BindQuery(c *gin.Context, obj any) error {
	return bindError(c.ShouldBindQuery(obj))
}

func bindError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fieldMessage(fe))
		}
		return apperror.NewValidationList("Données invalides", msgs)
	}
	return apperror.NewValidation("Requête invalide").WithCause(err)
}

func fieldMessage(fe validator.FieldError) string {
	field := fieldPath(fe.Namespace())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s: champ obligatoire", field)
	case "email":
		return fmt.Sprintf("%s: adresse email invalide", field)
	case "uuid":
		return fmt.Sprintf("%s: identifiant invalide", field)
	case "min":
		return fmt.Sprintf("%s: au moins %s caractères", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s: au plus %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s: doit être supérieur ou égal à %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s: valeur attendue parmi %s", field, fe.Param())
	case "vat":
		return fmt.Sprintf("%s: taux de TVA entre 0 et 100", field)
	}
	return fmt.Sprintf("%s: valeur invalide", field)
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
