// Package apperrors defines the error kinds the HTTP layer translates to status codes.
package apperrors

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/gin-gonic/gin"
)

// Kind classifies an error for translation at the HTTP boundary.
type Kind string

const (
	KindInvalidInput Kind = "INVALID_INPUT"
	KindNotFound     Kind = "NOT_FOUND"
	KindTooLarge     Kind = "PAYLOAD_TOO_LARGE"
	KindPrediction   Kind = "PREDICTION_ERROR"
	KindInternal     Kind = "INTERNAL_ERROR"
)

// internalMessage is the only reason string clients see for server-side failures.
const internalMessage = "Internal server error"

// AppError carries an errbuilder error together with its Kind and HTTP status.
type AppError struct {
	*errbuilder.ErrBuilder
	Kind       Kind
	HTTPStatus int
}

func (e *AppError) Error() string {
	if cause := e.ErrBuilder.Unwrap(); cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.ErrBuilder.Msg, cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.ErrBuilder.Msg)
}

func (e *AppError) Unwrap() error {
	return e.ErrBuilder.Unwrap()
}

// PublicMessage is the reason string safe to return to a client.
func (e *AppError) PublicMessage() string {
	switch e.Kind {
	case KindInvalidInput, KindNotFound:
		return e.ErrBuilder.Msg
	default:
		return internalMessage
	}
}

func newAppError(builder *errbuilder.ErrBuilder, kind Kind, status int) *AppError {
	return &AppError{ErrBuilder: builder, Kind: kind, HTTPStatus: status}
}

// InvalidInput reports a missing or empty required field.
func InvalidInput(message string) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(message)
	return newAppError(builder, KindInvalidInput, http.StatusBadRequest)
}

// NotFound reports a lookup that produced no rows.
func NotFound(message string) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(message)
	return newAppError(builder, KindNotFound, http.StatusNotFound)
}

// TooLarge reports a request body over the configured size limit.
func TooLarge(message string) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeResourceExhausted).
		WithMsg(message)
	return newAppError(builder, KindTooLarge, http.StatusRequestEntityTooLarge)
}

// Prediction wraps a failure raised by the classifier.
func Prediction(cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("prediction failed")
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return newAppError(builder, KindPrediction, http.StatusInternalServerError)
}

// Internal wraps any other unexpected failure.
func Internal(message string, cause error) *AppError {
	errorMap := errbuilder.ErrorMap{}
	errorMap.Set("internal_details", errors.New(message))

	builder := errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(message).
		WithDetails(errbuilder.NewErrDetails(errorMap))
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return newAppError(builder, KindInternal, http.StatusInternalServerError)
}

// From converts any error into an AppError; unknown errors become internal.
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("unexpected error", err)
}

func kindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

func IsInvalidInput(err error) bool { return kindOf(err) == KindInvalidInput }

func IsNotFound(err error) bool { return kindOf(err) == KindNotFound }

func IsPrediction(err error) bool { return kindOf(err) == KindPrediction }

// ErrorHandler renders the last error attached with c.Error as
// {"error": reason, "code": kind}. Server-side failures are logged with their cause.
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		appErr := From(c.Errors.Last().Err)
		log := logger.With(
			"error_kind", appErr.Kind,
			"http_status", appErr.HTTPStatus,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"request_id", c.GetString("request_id"),
		)
		if appErr.HTTPStatus >= http.StatusInternalServerError {
			log.Error(appErr.ErrBuilder.Msg, "cause", appErr.Unwrap())
		} else {
			log.Warn(appErr.ErrBuilder.Msg)
		}

		c.JSON(appErr.HTTPStatus, Body(appErr))
	}
}

// Recovery turns a panic into a structured internal error response.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		appErr := Internal("panic recovered", fmt.Errorf("%v", recovered))
		logger.Error("panic recovered",
			"panic", recovered,
			"path", c.Request.URL.Path,
			"request_id", c.GetString("request_id"),
		)
		c.AbortWithStatusJSON(appErr.HTTPStatus, Body(appErr))
	})
}

// Body is the JSON error payload.
func Body(err *AppError) gin.H {
	return gin.H{
		"error": err.PublicMessage(),
		"code":  string(err.Kind),
	}
}
