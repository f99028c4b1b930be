package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/xavierca1/proposal-control/internal/usecase"
)

type ErrorResponse struct {
	Error   string                    `json:"error"`
	Message string                    `json:"message"`
	Fields  []usecase.ValidationError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"INTERNAL","message":"erro interno"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

// writeUseCaseError traduz os erros do domínio para status HTTP. O detalhe
// técnico já foi logado no usecase; aqui só vai a mensagem para o operador.
func writeUseCaseError(w http.ResponseWriter, err error) {
	var (
		authErr *usecase.AuthError
		dataErr *usecase.DataError
	)

	switch {
	case errors.Is(err, usecase.ErrNoSession):
		writeErrorResponse(w, http.StatusUnauthorized, "NO_SESSION", "Faça login para continuar.")
	case errors.Is(err, usecase.ErrWriteInFlight):
		writeErrorResponse(w, http.StatusConflict, "WRITE_IN_FLIGHT", "Aguarde a gravação anterior terminar.")
	case errors.Is(err, usecase.ErrDigestDisabled):
		writeErrorResponse(w, http.StatusServiceUnavailable, "REPORT_DISABLED", "Relatório de follow-up não configurado.")
	case errors.As(err, &authErr):
		writeErrorResponse(w, http.StatusUnauthorized, "AUTH_ERROR", authErr.Message)
	case errors.As(err, &dataErr):
		writeJSON(w, dataErrorStatus(dataErr.Code), ErrorResponse{
			Error:   dataErr.Code,
			Message: dataErr.Message,
			Fields:  dataErr.Fields,
		})
	default:
		writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL", "Erro interno.")
	}
}

func dataErrorStatus(code string) int {
	switch code {
	case usecase.CodeValidation:
		return http.StatusUnprocessableEntity
	case usecase.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}
