// Package handlers adapts HTTP requests to the editor's command and query
// buses.
package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"go.uber.org/zap"

	"mindgraph/application/commands/bus"
	querybus "mindgraph/application/queries/bus"
	"mindgraph/application/services"
	"mindgraph/domain/core/aggregates"
	"mindgraph/pkg/common"
	"mindgraph/pkg/errors"
	"mindgraph/pkg/utils"
)

// maxBodyBytes bounds request bodies; a full map import is the largest
const maxBodyBytes = 8 << 20

// Deps are the collaborators shared by all handlers
type Deps struct {
	Commands  *bus.CommandBus
	Queries   *querybus.QueryBus
	Editor    *services.EditorService
	Documents *services.DocumentService
	Errors    *errors.ErrorHandler
	Logger    *zap.Logger
}

type base struct {
	Deps
}

// decode reads a JSON body into v and validates it
func (h base) decode(r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.NewValidationError("invalid request body").WithCause(err)
	}
	return utils.ValidateStruct(v)
}

func (h base) ok(w http.ResponseWriter, data interface{}) {
	common.RespondJSON(w, http.StatusOK, data)
}

func (h base) created(w http.ResponseWriter, data interface{}) {
	common.RespondJSON(w, http.StatusCreated, data)
}

func (h base) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.Errors.Handle(w, r, ToAppError(err))
}

// ask runs a query and writes its result
func (h base) ask(w http.ResponseWriter, r *http.Request, q querybus.Query) {
	res, err := h.Queries.Ask(r.Context(), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, res)
}

// send runs a command and writes its result
func (h base) send(w http.ResponseWriter, r *http.Request, cmd bus.Command) {
	res, err := h.Commands.Send(r.Context(), cmd)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, res)
}

// ToAppError maps engine and bus errors onto API errors. Mutations the map
// refuses become CONFLICT or REJECTED; the store is unchanged in both cases.
func ToAppError(err error) error {
	if err == nil {
		return nil
	}
	if appErr := errors.GetAppError(err); appErr != nil {
		return appErr
	}

	var verrs *errors.ValidationErrors
	switch {
	case stderrors.As(err, &verrs):
		return verrs.AppError()
	case stderrors.Is(err, bus.ErrValidationFailed), stderrors.Is(err, querybus.ErrValidationFailed):
		return errors.NewValidationError(err.Error()).WithCause(err)
	case stderrors.Is(err, services.ErrNoCurrentMap):
		return errors.NewNotFoundError("map").WithCause(err)
	case stderrors.Is(err, aggregates.ErrNodeNotFound):
		return errors.NewNotFoundError("node").WithCause(err)
	case stderrors.Is(err, aggregates.ErrEdgeNotFound):
		return errors.NewNotFoundError("edge").WithCause(err)
	case stderrors.Is(err, aggregates.ErrNodeExists),
		stderrors.Is(err, aggregates.ErrEdgeExists),
		stderrors.Is(err, aggregates.ErrDuplicateEdge):
		return errors.NewConflictError(err.Error()).WithCause(err)
	case stderrors.Is(err, aggregates.ErrSelfLoop),
		stderrors.Is(err, aggregates.ErrLastNode),
		stderrors.Is(err, aggregates.ErrDanglingEdge),
		stderrors.Is(err, aggregates.ErrInvalidDirection),
		stderrors.Is(err, services.ErrNoSelection):
		return errors.NewRejectedError(err.Error()).WithCause(err)
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.NewTimeoutError("request").WithCause(err)
	}
	return errors.NewInternalError("request failed").WithCause(err)
}
