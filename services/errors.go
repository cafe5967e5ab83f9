package services

import (
	"errors"

	"newsroom-cms/models"
	"newsroom-cms/repositories"

	"gorm.io/gorm"
)

// storeError classifies an error coming back from a repository.
func storeError(err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return models.ErrorNotFound{Message: notFound}
	case errors.Is(err, repositories.ErrNotPending):
		return models.ErrorForbidden{Message: "article is no longer pending"}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return models.ErrorConflict{Message: "record already exists"}
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return models.ErrorConflict{Message: "record is still referenced"}
	}
	return models.ErrorInternalServer{Message: "storage failure", Err: err}
}

func requireRole(actor models.Actor, min models.UserRole, action string) error {
	if actor.IsAnonymous() {
		return models.ErrorUnauthorized{Message: "authentication required"}
	}
	if !actor.Role.AtLeast(min) {
		return models.ErrorForbidden{Message: "role " + string(actor.Role) + " may not " + action}
	}
	return nil
}
