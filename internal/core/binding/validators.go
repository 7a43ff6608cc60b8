package binding

import (
	"fmt"
	"regexp"

	"itinventory/pkg/metadata"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var poNumberPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._/-]{0,63}$`)

// RegisterValidators installs the custom binding tags on gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return Register(v)
}

func Register(v *validator.Validate) error {
	if err := v.RegisterValidation("asset_status", validateAssetStatus); err != nil {
		return fmt.Errorf("register asset_status: %w", err)
	}
	if err := v.RegisterValidation("po_number", validatePONumber); err != nil {
		return fmt.Errorf("register po_number: %w", err)
	}
	return nil
}

func validateAssetStatus(fl validator.FieldLevel) bool {
	_, err := metadata.NewStatus(fl.Field().String())
	return err == nil
}

func validatePONumber(fl validator.FieldLevel) bool {
	return poNumberPattern.MatchString(fl.Field().String())
}
