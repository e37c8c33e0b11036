package reply

import (
	"context"
	"errors"
	"net/http"

	"git.appkode.ru/pub/go/failure"
	jsoniter "github.com/json-iterator/go"

	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/contextx"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/errcodes"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/logx"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

// errorResponse is the error envelope the dashboard front-end consumes.
// The success/error pair is what the page scripts check; code and
// supportId are extra keys for operators.
type errorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	SupportID string `json:"supportId,omitempty"`
}

func (e *errorResponse) WithDefaultCode(code failure.ErrorCode) {
	if e.Code == "" {
		e.Code = code.String()
	}
}

// coder and messenger are implemented by domain.AppError.
type coder interface {
	ErrorCode() failure.ErrorCode
}

type messenger interface {
	ErrorMessage() string
}

// codeStatuses maps domain error codes to statuses for errors that carry
// no failure kind.
//
//nolint:gochecknoglobals
var codeStatuses = map[failure.ErrorCode]int{
	errcodes.ValidationError:       http.StatusBadRequest,
	errcodes.InvalidCompanyID:      http.StatusBadRequest,
	errcodes.InvalidJobType:        http.StatusBadRequest,
	errcodes.InvalidChatMessage:    http.StatusBadRequest,
	errcodes.CredentialsMismatch:   http.StatusUnauthorized,
	errcodes.SessionExpired:        http.StatusUnauthorized,
	errcodes.Forbidden:             http.StatusForbidden,
	errcodes.CSRFTokenInvalid:      http.StatusForbidden,
	errcodes.NotFound:              http.StatusNotFound,
	errcodes.CompanyNotFound:       http.StatusNotFound,
	errcodes.SkillNotFound:         http.StatusNotFound,
	errcodes.ConfigurationNotFound: http.StatusNotFound,
	errcodes.ConfigurationLocked:   http.StatusLocked,
	errcodes.JobAlreadyRunning:     http.StatusConflict,
	errcodes.TimeoutExceeded:       http.StatusGatewayTimeout,
	errcodes.WarehouseUnavailable:  http.StatusBadGateway,
	errcodes.ScoringUnavailable:    http.StatusBadGateway,
	errcodes.ChatUnavailable:       http.StatusBadGateway,
	errcodes.CloudRunUnavailable:   http.StatusBadGateway,
}

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

func OK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
}

func Created(w http.ResponseWriter) {
	w.WriteHeader(http.StatusCreated)
}

func JSON(ctx context.Context, w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger(ctx).Error("json.Encode", logx.Error(err))
	}
}

func Error(ctx context.Context, w http.ResponseWriter, err error) {
	logger(ctx).Error("error", logx.Error(err))

	response := errorResponse{
		Success:   false,
		Error:     failure.Description(err),
		Code:      failure.Code(err).String(),
		SupportID: supportID(ctx),
	}

	var domainErr coder
	if response.Code == "" && errors.As(err, &domainErr) {
		response.Code = domainErr.ErrorCode().String()
	}

	if response.Error == "" {
		var withMessage messenger
		if errors.As(err, &withMessage) {
			response.Error = withMessage.ErrorMessage()
		} else {
			response.Error = err.Error()
		}
	}

	switch {
	case failure.IsInvalidArgumentError(err):
		response.WithDefaultCode(errcodes.ValidationError)
		JSON(ctx, w, http.StatusBadRequest, response)
	case failure.IsNotFoundError(err):
		response.WithDefaultCode(errcodes.NotFound)
		JSON(ctx, w, http.StatusNotFound, response)
	case failure.IsUnauthorizedError(err):
		JSON(ctx, w, http.StatusUnauthorized, response)
	case failure.IsForbiddenError(err):
		response.WithDefaultCode(errcodes.Forbidden)
		JSON(ctx, w, http.StatusForbidden, response)
	case failure.IsConflictError(err):
		JSON(ctx, w, http.StatusConflict, response)
	case failure.IsUnprocessableEntityError(err):
		JSON(ctx, w, http.StatusUnprocessableEntity, response)
	default:
		if status, ok := codeStatuses[failure.ErrorCode(response.Code)]; ok {
			JSON(ctx, w, status, response)
			return
		}

		response.WithDefaultCode(errcodes.InternalServerError)
		JSON(ctx, w, http.StatusInternalServerError, response)
	}
}

// Panic is what the recovery middleware sends: a fixed envelope that
// reveals nothing about the panic.
func Panic(ctx context.Context, w http.ResponseWriter) {
	JSON(ctx, w, http.StatusInternalServerError, errorResponse{
		Success:   false,
		Error:     "Internal server error",
		Code:      errcodes.InternalServerError.String(),
		SupportID: supportID(ctx),
	})
}

func supportID(ctx context.Context) string {
	traceID, err := contextx.TraceIDFromContext(ctx)
	if err != nil {
		return "unsupported"
	}

	return traceID.String()
}
