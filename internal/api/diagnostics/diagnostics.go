// Package diagnostics serves liveness and request echo endpoints.
package diagnostics

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/FACorreiaa/go-auth-api/internal/api"
	"github.com/FACorreiaa/go-auth-api/internal/types"
)

type HandlerImpl struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewHandlerImpl(logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{logger: logger, now: time.Now}
}

// Ping godoc
// @Summary      Liveness probe
// @Tags         diagnostics
// @Produce      plain
// @Success      200  {string}  string  "pong"
// @Router       /ping [get]
func (h *HandlerImpl) Ping(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}

// Echo godoc
// @Summary      Echo a JSON message
// @Description  Returns the message and data it was sent, stamped with the receive time.
// @Tags         diagnostics
// @Accept       json
// @Produce      json
// @Param        body  body      types.EchoRequest  true  "Message"
// @Success      200   {object}  types.EchoResponse
// @Failure      400   {object}  types.ErrorResponse
// @Router       /test [post]
func (h *HandlerImpl) Echo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req types.EchoRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		h.logger.DebugContext(ctx, "Echo body rejected", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := api.ValidateStruct(req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, api.ValidationMessage(err))
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.EchoResponse{
		Status:     "success",
		Message:    "Received message: " + req.Message,
		Data:       req.Data,
		ReceivedAt: h.now().UTC(),
	})
}
