// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON-ответов HTTP-обработчиков.
//
// Успешный ответ: {"success": true, "message"?, "data"?}.
// Ошибка: {"success": false, "message", "code"?, "upgrade"?}.
package response

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/app-despesas/internal/lib/apperr"
	"github.com/magabrotheeeer/app-despesas/internal/lib/sl"
)

// Response описывает стандартную структуру JSON-ответа сервера.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
	Upgrade bool   `json:"upgrade,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ErrorResponse структура ошибки для Swagger-документации.
type ErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Message string `json:"message" example:"access token is invalid"`
	Code    string `json:"code,omitempty" example:"INVALID_TOKEN"`
	Upgrade bool   `json:"upgrade,omitempty" example:"false"`
}

const internalMessage = "internal server error"

// OKWithData возвращает успешный Response с переданными данными.
func OKWithData(data any) Response {
	return Response{Success: true, Data: data}
}

// OKWithMessage возвращает успешный Response с сообщением и данными.
func OKWithMessage(message string, data any) Response {
	return Response{Success: true, Message: message, Data: data}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) Response {
	return Response{Message: msg}
}

// Coded возвращает Response для ошибки с кодом.
func Coded(e *apperr.Error) Response {
	return Response{
		Message: e.Message,
		Code:    e.Code,
		Upgrade: e == apperr.ErrPremiumRequired,
	}
}

// StatusOf возвращает HTTP-статус для класса ошибки.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, apperr.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// FromError возвращает статус и тело ответа для ошибки err. Текст
// неклассифицированных ошибок клиенту не отдается.
func FromError(err error) (int, Response) {
	status := StatusOf(err)
	var coded *apperr.Error
	if errors.As(err, &coded) {
		return status, Coded(coded)
	}
	switch status {
	case http.StatusInternalServerError:
		return status, Error(internalMessage)
	case http.StatusServiceUnavailable:
		return status, Coded(apperr.ErrServiceUnavailable)
	default:
		return status, Error(http.StatusText(status))
	}
}

// Fail пишет ответ с ошибкой. Ошибки сервера логируются на уровне error,
// клиентские на уровне info.
func Fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status, body := FromError(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", slog.Int("status", status), sl.Err(err))
	} else {
		log.Info("request rejected", slog.Int("status", status), slog.String("code", body.Code))
	}
	render.Status(r, status)
	render.JSON(w, r, body)
}

// InvalidBody пишет 400 для тела запроса, которое не удалось разобрать.
func InvalidBody(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, Response{Message: "invalid request body", Code: "INVALID_BODY"})
}

// ValidationError формирует Response на основе ошибок валидации.
// Каждое нарушение формируется в человекочитаемый текст, объединенный через запятую.
func ValidationError(code string, errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at least %s", err.Field(), err.Param()))
		case "max":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at most %s", err.Field(), err.Param()))
		case "oneof":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be one of [%s]", err.Field(), err.Param()))
		case "gt":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be greater than %s", err.Field(), err.Param()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not valid", err.Field()))
		}
	}
	return Response{
		Message: strings.Join(errsMsgs, ", "),
		Code:    code,
	}
}

// Validate проверяет структуру req и при ошибке пишет 400. Возвращает false,
// если обработку нужно прекратить.
func Validate(w http.ResponseWriter, r *http.Request, v *validator.Validate, code string, req any) bool {
	err := v.Struct(req)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	render.Status(r, http.StatusBadRequest)
	if errors.As(err, &verrs) {
		render.JSON(w, r, ValidationError(code, verrs))
	} else {
		render.JSON(w, r, Response{Message: err.Error(), Code: code})
	}
	return false
}
