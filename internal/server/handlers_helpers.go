package server

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/kidusaman/StudyGroup-Backend/internal/domain"
	apperrors "github.com/kidusaman/StudyGroup-Backend/internal/errors"
)

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.ValidationError("invalid id").WithField(name, raw)
	}
	return id, nil
}

// mapDomainError translates domain sentinel errors into structured API errors.
func mapDomainError(err error) error {
	switch {
	case errors.Is(err, domain.ErrAnswerNotFound):
		return apperrors.NotFoundError("answer not found")
	case errors.Is(err, domain.ErrQuestionNotFound):
		return apperrors.NotFoundError("question not found")
	case errors.Is(err, domain.ErrUserNotFound):
		return apperrors.NotFoundError("user not found")
	case errors.Is(err, domain.ErrNotificationNotFound):
		return apperrors.NotFoundError("notification not found")
	case errors.Is(err, domain.ErrMessageNotFound):
		return apperrors.NotFoundError("message not found")
	case errors.Is(err, domain.ErrNotQuestionOwner):
		return apperrors.ForbiddenError("only the question owner may change acceptance")
	case errors.Is(err, domain.ErrNotAccepted):
		return apperrors.InvalidStateError("answer is not accepted")
	case errors.Is(err, domain.ErrStoreUnavailable):
		return apperrors.UnavailableError("store unavailable", err)
	default:
		return apperrors.InternalError("internal error", err)
	}
}
