package usecase

import "errors"

const (
	CodeCampaignLocked   = "CAMPAIGN_LOCKED"
	CodeNotAuthenticated = "NOT_AUTHENTICATED"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeBackendError     = "BACKEND_ERROR"
	CodeStorageError     = "STORAGE_ERROR"
)

// DomainError: regra de negócio violada, nada foi enviado ao backend.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError: falha de rede, backend ou armazenamento local.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

func HasCode(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	var te *TechnicalError
	if errors.As(err, &te) {
		return te.Code == code
	}
	return false
}

var errCampaignLocked = &DomainError{
	Code:    CodeCampaignLocked,
	Message: "campanha não pode ser editada no status atual",
}
