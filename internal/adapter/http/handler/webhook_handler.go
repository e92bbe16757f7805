package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"crowdfund-ledger/internal/core/domain"
	"crowdfund-ledger/internal/core/ports"
	"crowdfund-ledger/pkg/apperror"
	"crowdfund-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// SignatureHeader is the gateway's webhook signature header.
const SignatureHeader = "X-Paystack-Signature"

// WebhookHandler is the gateway event ingress: it authenticates the
// notification, hands a typed event to the settlement engine, and always
// acknowledges with 200 so the gateway does not retry events we have already
// decided about. Redelivery of transient failures is driven by non-2xx only
// for signature and payload errors.
type WebhookHandler struct {
	engine   ports.SettlementEngine
	settings ports.SettingsRepository
	sigSvc   ports.SignatureService
	recorder ports.EventRecorder
	log      zerolog.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(
	engine ports.SettlementEngine,
	settings ports.SettingsRepository,
	sigSvc ports.SignatureService,
	recorder ports.EventRecorder,
	log zerolog.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		engine:   engine,
		settings: settings,
		sigSvc:   sigSvc,
		recorder: recorder,
		log:      log,
	}
}

// eventEnvelope is the gateway's webhook body: an event name plus a payload.
type eventEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// chargePayload is the gateway's charge notification shape.
type chargePayload struct {
	Reference     string    `json:"reference"`
	Status        string    `json:"status"`
	ID            int64     `json:"id"`
	Amount        int64     `json:"amount"`
	Channel       string    `json:"channel"`
	Fees          int64     `json:"fees"`
	PaidAt        time.Time `json:"paid_at"`
	Authorization struct {
		AuthorizationCode string `json:"authorization_code"`
	} `json:"authorization"`
}

// transferPayload is the gateway's transfer notification shape.
type transferPayload struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
	ID        int64  `json:"id"`
	Amount    int64  `json:"amount"`
}

// HandleGatewayEvent processes one webhook delivery.
func (h *WebhookHandler) HandleGatewayEvent(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, apperror.Validation("cannot read request body"))
		return
	}

	settings, err := h.settings.Get(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("webhook: failed to load gateway secret")
		response.Error(c, apperror.InternalError(err))
		return
	}

	if !h.sigSvc.Verify(settings.GatewaySecretKey, body, c.GetHeader(SignatureHeader)) {
		h.log.Warn().Str("client_ip", c.ClientIP()).Msg("webhook: invalid signature")
		response.Error(c, apperror.ErrInvalidSignature())
		return
	}

	var envelope eventEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		response.Error(c, apperror.ErrMalformedEvent(err))
		return
	}

	applied, reference, procErr := h.dispatch(c, envelope)

	outcome := domain.EventOutcomeDiscarded
	if applied {
		outcome = domain.EventOutcomeApplied
	} else if procErr != nil {
		outcome = domain.EventOutcomeErrored
		h.log.Error().Err(procErr).Str("event", envelope.Event).Str("reference", reference).Msg("webhook: settlement failed")
	}
	h.recorder.Record(c.Request.Context(), envelope.Event, reference, outcome, body)

	// Per gateway webhook conventions the delivery is acknowledged regardless
	// of the internal outcome; a pending record is settled on redelivery.
	c.JSON(http.StatusOK, gin.H{"success": applied})
}

func (h *WebhookHandler) dispatch(c *gin.Context, envelope eventEnvelope) (bool, string, error) {
	ctx := c.Request.Context()

	switch {
	case strings.HasPrefix(envelope.Event, "charge."):
		var p chargePayload
		if err := json.Unmarshal(envelope.Data, &p); err != nil {
			return false, "", apperror.ErrMalformedEvent(err)
		}
		applied, err := h.engine.ProcessCharge(ctx, domain.ChargeEvent{
			Reference:         p.Reference,
			Status:            p.Status,
			GatewayID:         p.ID,
			AmountMinor:       p.Amount,
			Channel:           p.Channel,
			AuthorizationCode: p.Authorization.AuthorizationCode,
			FeeMinor:          p.Fees,
			PaidAt:            p.PaidAt,
		})
		return applied, p.Reference, err

	case strings.HasPrefix(envelope.Event, "transfer."):
		var p transferPayload
		if err := json.Unmarshal(envelope.Data, &p); err != nil {
			return false, "", apperror.ErrMalformedEvent(err)
		}
		applied, err := h.engine.ProcessTransfer(ctx, domain.TransferEvent{
			Reference:   p.Reference,
			Status:      p.Status,
			GatewayID:   p.ID,
			AmountMinor: p.Amount,
		})
		return applied, p.Reference, err

	default:
		h.log.Debug().Str("event", envelope.Event).Msg("webhook: unhandled event type")
		return false, "", nil
	}
}
