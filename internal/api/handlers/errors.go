package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/RMahshie/roomtreat/internal/errs"
	"github.com/RMahshie/roomtreat/internal/repository"
	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"
)

// toHTTPError maps service and repository errors onto huma status errors.
// Unknown errors are logged and reported as 500 with msg.
func toHTTPError(ctx context.Context, msg string, err error) error {
	switch {
	case errs.IsValidation(err):
		return huma.Error422UnprocessableEntity(err.Error(), err)
	case errs.IsUnreachable(err):
		return huma.Error422UnprocessableEntity(err.Error(), err)
	case errors.Is(err, errs.ErrInputTooLarge):
		return huma.NewError(http.StatusRequestEntityTooLarge, err.Error(), err)
	}
	if _, ok := errs.ParseKindOf(err); ok {
		return huma.Error400BadRequest(err.Error(), err)
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return huma.Error404NotFound(msg+": not found", err)
	case errors.Is(err, repository.ErrDuplicate):
		return huma.Error409Conflict(msg+": already exists", err)
	}

	log.Ctx(ctx).Error().Err(err).Msg(msg)
	return huma.Error500InternalServerError(msg, err)
}
