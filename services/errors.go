package services

import (
	"errors"
	"fmt"

	"social-blog/models"

	"gorm.io/gorm"
)

// translate maps repository errors onto the domain error types.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ErrorNotFound{Message: what + " not found"}
	}
	return models.ErrorInternalServer{Message: fmt.Sprintf("load %s", what), Err: err}
}

func internal(action string, err error) error {
	if err == nil {
		return nil
	}
	return models.ErrorInternalServer{Message: action, Err: err}
}
