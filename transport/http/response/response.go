package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"voyage/shared/constant"
	"voyage/shared/failure"
	"voyage/shared/logger"
)

type Data[T any] struct {
	Data *T `json:"data,omitempty"`
}

type Error struct {
	Error   *string        `json:"error,omitempty"`
	Reason  string         `json:"reason,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

type Message struct {
	Message *string `json:"message,omitempty"`
}

// WithMessage sends a response with a simple text message
func WithMessage(writer http.ResponseWriter, code int, message string) {
	response(writer, code, Message{Message: &message})
}

// WithJSON sends a response containing a JSON object
func WithJSON(writer http.ResponseWriter, code int, jsonPayload any) {
	response(writer, code, Data[any]{Data: &jsonPayload})
}

// WithError sends a response with an error message. Failures also carry their
// reason and details so clients can act on them, e.g. the remaining budget.
func WithError(writer http.ResponseWriter, err error) {
	code := failure.GetCode(err)
	errMsg := err.Error()

	var fail *failure.Failure
	if code == http.StatusInternalServerError {
		errMsg = http.StatusText(http.StatusInternalServerError)
	} else if errors.As(err, &fail) {
		errMsg = fail.Message
	}

	response(writer, code, Error{
		Error:   &errMsg,
		Reason:  failure.GetReason(err),
		Details: failure.GetDetails(err),
	})
}

// WithRequestLimitExceeded sends a default response for when the request limit is exceeded
func WithRequestLimitExceeded(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusTooManyRequests, constant.ResponseErrorRequestLimitExceeded)
}

// WithPreparingShutdown sends a default response for when the server is preparing to shut down
func WithPreparingShutdown(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusServiceUnavailable, constant.ResponseErrorPrepareShutdown)
}

// WithUnhealthy sends a default response for when the server is unhealthy
func WithUnhealthy(writer http.ResponseWriter) {
	WithMessage(writer, http.StatusServiceUnavailable, constant.ResponseErrorUnhealthy)
}

func response(writer http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.ErrorWithStack(err)

		return
	}

	writer.Header().Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
	writer.WriteHeader(code)

	if _, err = writer.Write(response); err != nil {
		logger.ErrorWithStack(err)
	}
}
