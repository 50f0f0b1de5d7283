package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"ticket-rush/common"
	"ticket-rush/common/constant"
	"ticket-rush/common/errs"
	"ticket-rush/common/otel"
	"ticket-rush/model"
	"ticket-rush/service/reservation"

	"github.com/go-playground/validator/v10"
)

const (
	paymentOutcomeSuccess = "success"
	paymentOutcomeFailure = "failure"
)

type PaymentHttp struct {
	Reservation *reservation.Engine
	Validate    *validator.Validate
}

func RegisterPaymentHttp(mux *http.ServeMux, engine *reservation.Engine, validate *validator.Validate) *PaymentHttp {
	in := &PaymentHttp{
		Reservation: engine,
		Validate:    validate,
	}

	mux.HandleFunc("POST /api/payments/callback", in.callback)

	return in
}

func (in PaymentHttp) callback(w http.ResponseWriter, r *http.Request) {
	var req model.PaymentCallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, &errs.HttpError{Code: http.StatusBadRequest, Message: "Invalid request"})
		return
	}

	if err := in.Validate.Struct(req); err != nil {
		writeErrorResponse(w, err)
		return
	}

	ctx, span := otel.Tracer.Start(r.Context(), "PaymentHttp.callback")
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)
	slog.InfoContext(ctx, "payment callback receive request", slog.Any(constant.LogFieldPayload, req), traceIdAttr)

	var err error
	switch req.Outcome {
	case paymentOutcomeSuccess:
		_, err = in.Reservation.ConfirmPayment(ctx, req.TicketId, req.UserId)
	case paymentOutcomeFailure:
		err = in.Reservation.FailPayment(ctx, req.TicketId)
	}

	if err != nil {
		if domainHttpError(err) == nil {
			slog.ErrorContext(ctx, "failed to apply payment callback", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		}
		writeErrorResponse(w, err)
		return
	}

	slog.InfoContext(ctx, "payment callback success", traceIdAttr, slog.String(constant.LogFieldTicketId, req.TicketId))

	writeJSONResponse(w, http.StatusOK, nil)
}
