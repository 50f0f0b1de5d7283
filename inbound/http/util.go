package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"ticket-rush/common/errs"
	"ticket-rush/model"

	"github.com/go-playground/validator/v10"
)

func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// domainHttpError translates engine sentinels into user-facing responses.
// Contention losers get an immediate conflict, never a queue-for-retry.
func domainHttpError(err error) *errs.HttpError {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return &errs.HttpError{Code: http.StatusNotFound, Message: "Not found"}
	case errors.Is(err, errs.ErrAlreadyEnrolled):
		return &errs.HttpError{Code: http.StatusConflict, Message: "Already enrolled"}
	case errors.Is(err, errs.ErrNotRemovable):
		return &errs.HttpError{Code: http.StatusConflict, Message: "Entry not removable"}
	case errors.Is(err, errs.ErrSeatUnavailable), errors.Is(err, errs.ErrConcurrentModification):
		return &errs.HttpError{Code: http.StatusConflict, Message: "Seat no longer available"}
	case errors.Is(err, errs.ErrLockAcquisitionFailed):
		return &errs.HttpError{Code: http.StatusConflict, Message: "Seat is busy, please retry"}
	case errors.Is(err, errs.ErrNotDraftOrNotOwner):
		return &errs.HttpError{Code: http.StatusForbidden, Message: "Ticket is not payable by caller"}
	}

	return nil
}

func writeErrorResponse(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	if domainErr := domainHttpError(err); domainErr != nil {
		err = domainErr
	}

	w.Header().Set("Content-Type", "application/json")

	var message string
	var data any
	if httpErr, ok := err.(*errs.HttpError); ok {
		message = httpErr.Message
		data = httpErr.Data
		w.WriteHeader(httpErr.Code)
	} else if validationErr, ok := err.(validator.ValidationErrors); ok {
		message = "Validation failed"
		w.WriteHeader(http.StatusBadRequest)

		validationErrors := make(map[string]string)
		for _, fieldErr := range validationErr {
			fieldName := fieldErr.Field()
			validationErrors[fieldName] = fieldErr.Tag()
		}

		data = validationErrors
	} else {
		message = "Internal Server Error"
		w.WriteHeader(500)
	}

	errorResponse := model.ErrorResponse{Error: message, Data: data}
	if err := json.NewEncoder(w).Encode(errorResponse); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
