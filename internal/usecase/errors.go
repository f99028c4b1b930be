package usecase

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSession bloqueia qualquer operação de dados sem sessão presente.
	ErrNoSession = errors.New("sessão ausente")
	// ErrWriteInFlight evita submissões duplicadas enquanto um create/update está em andamento.
	ErrWriteInFlight = errors.New("já existe uma gravação em andamento")
)

const (
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeValidation         = "VALIDATION_ERROR"
	CodeFetchFailed        = "FETCH_FAILED"
	CodeInsertFailed       = "INSERT_FAILED"
	CodeUpdateFailed       = "UPDATE_FAILED"
	CodeDeleteFailed       = "DELETE_FAILED"
	CodeNotFound           = "NOT_FOUND"
)

// AuthError é a recusa de credenciais. A mensagem é sempre genérica para não
// revelar se a conta existe.
type AuthError struct {
	Code    string
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// DataError cobre falhas de leitura/gravação no armazenamento. Message é o
// texto mostrado ao operador; o detalhe fica em Err e vai só para o log.
type DataError struct {
	Code    string
	Op      string
	Message string
	Fields  []ValidationError
	Err     error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s (%s): %s", e.Op, e.Code, e.Message)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

func IsDataError(err error) bool {
	var dataErr *DataError
	return errors.As(err, &dataErr)
}
