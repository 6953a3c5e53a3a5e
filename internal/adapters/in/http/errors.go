package http

import (
	"errors"
	"net/http"

	"exchange/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// writeError maps a failure to its HTTP status. Validation failures are the
// caller's fault: 404 when the order does not exist, 422 otherwise.
// Processing failures are retryable upstream trouble (502); everything else
// is a 500.
func writeError(ctx echo.Context, err error) error {
	var domainErr *errs.DomainError
	if !errors.As(err, &domainErr) {
		return ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Category: errs.Internal.String(),
			Code:     string(errs.CodeGeneric),
			Message:  err.Error(),
		})
	}

	status := http.StatusInternalServerError
	switch domainErr.Category {
	case errs.Validation:
		status = http.StatusUnprocessableEntity
		if domainErr.Code == errs.CodeNotFound {
			status = http.StatusNotFound
		}
	case errs.Processing:
		status = http.StatusBadGateway
	}

	return ctx.JSON(status, ErrorResponse{
		Category: domainErr.Category.String(),
		Code:     string(domainErr.Code),
		Message:  domainErr.Error(),
	})
}
