package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-slots/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-slots/internal/app"
	"github.com/jsamuelsen/quote-slots/internal/domain"
	"github.com/jsamuelsen/quote-slots/internal/ports"
)

// SlotMachine is the part of app.SlotService the HTTP API drives.
type SlotMachine interface {
	Quotes() ([]domain.Quote, error)
	Spin(ctx context.Context) (*app.SpinTicket, error)
	Display() app.Display
	SetMuted(ctx context.Context, muted bool)
	Muted() bool
	Audio() []ports.TrackState
}

// SlotHandler handles the slot machine endpoints.
type SlotHandler struct {
	slots SlotMachine
}

// NewSlotHandler creates a slot handler.
// Panics if slots is nil.
func NewSlotHandler(slots SlotMachine) *SlotHandler {
	if slots == nil {
		panic("handlers.NewSlotHandler: slots is required")
	}

	return &SlotHandler{slots: slots}
}

// ListQuotes handles GET /api/v1/quotes.
func (h *SlotHandler) ListQuotes(c *gin.Context) {
	quotes, err := h.slots.Quotes()
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.QuotesResponse{
		Quotes: dto.NewQuoteResponses(quotes),
		Count:  len(quotes),
	})
}

// Spin handles POST /api/v1/spins. The spin runs in the background; the
// response carries the reel and the quote it will land on.
func (h *SlotHandler) Spin(c *gin.Context) {
	ticket, err := h.slots.Spin(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.NewSpinResponse(ticket))
}

// GetDisplay handles GET /api/v1/display.
func (h *SlotHandler) GetDisplay(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewDisplayResponse(h.slots.Display()))
}

// SetMute handles PUT /api/v1/audio/mute.
func (h *SlotHandler) SetMute(c *gin.Context) {
	var req dto.MuteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		if errors.Is(err, dto.ErrBinding) {
			dto.RespondWithErrorCode(c, dto.ErrorCodeBadRequest, "request body must be a JSON object")
			return
		}

		dto.RespondWithValidationErrors(c, dto.ValidationErrors(err))

		return
	}

	h.slots.SetMuted(c.Request.Context(), *req.Muted)
	h.GetAudio(c)
}

// GetAudio handles GET /api/v1/audio.
func (h *SlotHandler) GetAudio(c *gin.Context) {
	c.JSON(http.StatusOK, dto.AudioResponse{
		Muted:  h.slots.Muted(),
		Tracks: h.slots.Audio(),
	})
}

// RegisterRoutes registers the slot routes on rg.
func (h *SlotHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/quotes", h.ListQuotes)
	rg.POST("/spins", h.Spin)
	rg.GET("/display", h.GetDisplay)
	rg.GET("/audio", h.GetAudio)
	rg.PUT("/audio/mute", h.SetMute)
}
