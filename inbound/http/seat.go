package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"ticket-rush/common"
	"ticket-rush/common/constant"
	"ticket-rush/common/errs"
	"ticket-rush/common/otel"
	"ticket-rush/model"
	"ticket-rush/service/queue"
	"ticket-rush/service/reservation"
	"time"

	"github.com/go-playground/validator/v10"
)

type SeatHttp struct {
	Reservation *reservation.Engine
	Queue       *queue.Engine
	Validate    *validator.Validate

	TimeNow func() time.Time
}

func RegisterSeatHttp(
	mux *http.ServeMux,
	reservationEngine *reservation.Engine,
	queueEngine *queue.Engine,
	validate *validator.Validate,
) *SeatHttp {
	in := &SeatHttp{
		Reservation: reservationEngine,
		Queue:       queueEngine,
		Validate:    validate,
		TimeNow:     time.Now,
	}

	mux.HandleFunc("GET /api/events/{id}/seats", in.listSeats)
	mux.HandleFunc("POST /api/seats/reserve", in.reserve)

	return in
}

func (in SeatHttp) listSeats(w http.ResponseWriter, r *http.Request) {
	eventId, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || eventId <= 0 {
		writeErrorResponse(w, &errs.HttpError{Code: http.StatusBadRequest, Message: "Invalid event id"})
		return
	}

	ctx, span := otel.Tracer.Start(r.Context(), "SeatHttp.listSeats")
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)

	seats, err := in.Reservation.ListAvailableSeats(ctx, eventId)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list available seats", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		writeErrorResponse(w, err)
		return
	}

	resp := model.ListSeatsResponse{Seats: make([]model.SeatResponse, 0, len(seats))}
	for _, seat := range seats {
		resp.Seats = append(resp.Seats, model.SeatResponse{
			Id:       seat.ID,
			SeatCode: seat.SeatCode,
			Grade:    seat.Grade,
			Price:    seat.Price,
		})
	}

	writeJSONResponse(w, http.StatusOK, resp)
}

func (in SeatHttp) reserve(w http.ResponseWriter, r *http.Request) {
	var req model.ReserveSeatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, &errs.HttpError{Code: http.StatusBadRequest, Message: "Invalid request"})
		return
	}

	if err := in.Validate.Struct(req); err != nil {
		writeErrorResponse(w, err)
		return
	}

	ctx, span := otel.Tracer.Start(r.Context(), "SeatHttp.reserve")
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)
	slog.InfoContext(ctx, "reserve seat receive request", slog.Any(constant.LogFieldPayload, req), traceIdAttr)

	entered, err := in.Queue.IsEntered(ctx, req.EventId, req.UserId, in.TimeNow())
	if err != nil {
		slog.ErrorContext(ctx, "failed to check queue entry", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		writeErrorResponse(w, err)
		return
	}

	if !entered {
		slog.DebugContext(ctx, "purchase window not open for user", traceIdAttr,
			slog.Int64(constant.LogFieldEventId, req.EventId), slog.Int64(constant.LogFieldUserId, req.UserId))
		writeErrorResponse(w, &errs.HttpError{Code: http.StatusForbidden, Message: "Purchase window not open"})
		return
	}

	ticket, seat, err := in.Reservation.ReserveSeat(ctx, req.EventId, req.SeatId, req.UserId)
	if err != nil {
		if domainHttpError(err) == nil {
			slog.ErrorContext(ctx, "failed to reserve seat", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		}
		writeErrorResponse(w, err)
		return
	}

	slog.InfoContext(ctx, "reserve seat success", traceIdAttr, slog.String(constant.LogFieldTicketId, ticket.ExternalID))

	writeJSONResponse(w, http.StatusOK, model.ReserveSeatResponse{
		TicketId: ticket.ExternalID,
		SeatCode: seat.SeatCode,
		Price:    seat.Price,
	})
}
