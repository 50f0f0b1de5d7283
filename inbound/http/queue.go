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

	"github.com/go-playground/validator/v10"
)

type QueueHttp struct {
	Queue    *queue.Engine
	Validate *validator.Validate
}

func RegisterQueueHttp(mux *http.ServeMux, engine *queue.Engine, validate *validator.Validate) *QueueHttp {
	in := &QueueHttp{
		Queue:    engine,
		Validate: validate,
	}

	mux.HandleFunc("POST /api/queue/enroll", in.enroll)
	mux.HandleFunc("GET /api/queue/status", in.status)
	mux.HandleFunc("DELETE /api/queue/entries", in.remove)

	return in
}

func (in QueueHttp) enroll(w http.ResponseWriter, r *http.Request) {
	var req model.EnrollQueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, &errs.HttpError{Code: http.StatusBadRequest, Message: "Invalid request"})
		return
	}

	if err := in.Validate.Struct(req); err != nil {
		writeErrorResponse(w, err)
		return
	}

	ctx, span := otel.Tracer.Start(r.Context(), "QueueHttp.enroll")
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)
	slog.InfoContext(ctx, "enroll queue receive request", slog.Any(constant.LogFieldPayload, req), traceIdAttr)

	resp, err := in.Queue.Enroll(ctx, req)
	if err != nil {
		slog.ErrorContext(ctx, "failed to enroll user", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		writeErrorResponse(w, err)
		return
	}

	slog.InfoContext(ctx, "enroll queue success", traceIdAttr, slog.Any(constant.LogFieldResponse, resp))

	writeJSONResponse(w, http.StatusOK, resp)
}

func (in QueueHttp) status(w http.ResponseWriter, r *http.Request) {
	eventId, userId, err := parseQueueIdentity(r)
	if err != nil {
		writeErrorResponse(w, err)
		return
	}

	ctx, span := otel.Tracer.Start(r.Context(), "QueueHttp.status")
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)

	resp, err := in.Queue.Status(ctx, eventId, userId)
	if err != nil {
		if err != errs.ErrNotFound {
			slog.ErrorContext(ctx, "failed to get queue status", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		}
		writeErrorResponse(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, resp)
}

func (in QueueHttp) remove(w http.ResponseWriter, r *http.Request) {
	var req model.RemoveQueueEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, &errs.HttpError{Code: http.StatusBadRequest, Message: "Invalid request"})
		return
	}

	if err := in.Validate.Struct(req); err != nil {
		writeErrorResponse(w, err)
		return
	}

	ctx, span := otel.Tracer.Start(r.Context(), "QueueHttp.remove")
	defer span.End()

	traceIdAttr := common.ExtractTraceIDFromCtx(ctx)
	slog.InfoContext(ctx, "remove queue entry receive request", slog.Any(constant.LogFieldPayload, req), traceIdAttr)

	if err := in.Queue.RemoveForUser(ctx, req.EventId, req.UserId); err != nil {
		if err != errs.ErrNotFound && err != errs.ErrNotRemovable {
			slog.ErrorContext(ctx, "failed to remove queue entry", traceIdAttr, slog.Any(constant.LogFieldErr, err))
		}
		writeErrorResponse(w, err)
		return
	}

	slog.InfoContext(ctx, "remove queue entry success", traceIdAttr,
		slog.Int64(constant.LogFieldEventId, req.EventId), slog.Int64(constant.LogFieldUserId, req.UserId))

	writeJSONResponse(w, http.StatusOK, nil)
}

func parseQueueIdentity(r *http.Request) (int64, int64, error) {
	eventId, err := strconv.ParseInt(r.URL.Query().Get("event_id"), 10, 64)
	if err != nil || eventId <= 0 {
		return 0, 0, &errs.HttpError{Code: http.StatusBadRequest, Message: "Invalid event_id"}
	}

	userId, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil || userId <= 0 {
		return 0, 0, &errs.HttpError{Code: http.StatusBadRequest, Message: "Invalid user_id"}
	}

	return eventId, userId, nil
}
