package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"crowdfund-ledger/internal/core/domain"
	"crowdfund-ledger/internal/core/ports/mocks"
	"crowdfund-ledger/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type webhookTestDeps struct {
	handler  *WebhookHandler
	engine   *mocks.MockSettlementEngine
	settings *mocks.MockSettingsRepository
	sigSvc   *mocks.MockSignatureService
	recorder *mocks.MockEventRecorder
	ctrl     *gomock.Controller
}

func setupWebhookHandler(t *testing.T) *webhookTestDeps {
	ctrl := gomock.NewController(t)
	d := &webhookTestDeps{
		engine:   mocks.NewMockSettlementEngine(ctrl),
		settings: mocks.NewMockSettingsRepository(ctrl),
		sigSvc:   mocks.NewMockSignatureService(ctrl),
		recorder: mocks.NewMockEventRecorder(ctrl),
		ctrl:     ctrl,
	}
	d.handler = NewWebhookHandler(d.engine, d.settings, d.sigSvc, d.recorder, zerolog.Nop())
	return d
}

func postWebhook(h *WebhookHandler, body []byte, signature string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/v1/webhooks/paystack", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.Header.Set(SignatureHeader, signature)
	h.HandleGatewayEvent(c)
	return w
}

func expectSettings(d *webhookTestDeps) {
	d.settings.EXPECT().Get(gomock.Any()).Return(&domain.PlatformSettings{
		GatewaySecretKey: "sk_test_secret",
	}, nil)
}

func TestWebhookHandler_ChargeSuccess(t *testing.T) {
	d := setupWebhookHandler(t)
	defer d.ctrl.Finish()

	body := []byte(`{
		"event": "charge.success",
		"data": {
			"reference": "cf_ref_001",
			"status": "success",
			"id": 987654,
			"amount": 100000,
			"channel": "card",
			"fees": 15000,
			"authorization": {"authorization_code": "AUTH_abc"}
		}
	}`)

	expectSettings(d)
	d.sigSvc.EXPECT().Verify("sk_test_secret", body, "valid-sig").Return(true)
	d.engine.EXPECT().
		ProcessCharge(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event domain.ChargeEvent) (bool, error) {
			assert.Equal(t, "cf_ref_001", event.Reference)
			assert.Equal(t, "success", event.Status)
			assert.Equal(t, int64(987654), event.GatewayID)
			assert.Equal(t, int64(100000), event.AmountMinor)
			assert.Equal(t, int64(15000), event.FeeMinor)
			assert.Equal(t, "card", event.Channel)
			assert.Equal(t, "AUTH_abc", event.AuthorizationCode)
			return true, nil
		})
	d.recorder.EXPECT().
		Record(gomock.Any(), "charge.success", "cf_ref_001", domain.EventOutcomeApplied, body)

	w := postWebhook(d.handler, body, "valid-sig")

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
}

func TestWebhookHandler_TransferSuccess(t *testing.T) {
	d := setupWebhookHandler(t)
	defer d.ctrl.Finish()

	body := []byte(`{
		"event": "transfer.success",
		"data": {"reference": "cf_ref_002", "status": "success", "id": 555, "amount": 100000}
	}`)

	expectSettings(d)
	d.sigSvc.EXPECT().Verify("sk_test_secret", body, "valid-sig").Return(true)
	d.engine.EXPECT().
		ProcessTransfer(gomock.Any(), domain.TransferEvent{
			Reference:   "cf_ref_002",
			Status:      "success",
			GatewayID:   555,
			AmountMinor: 100000,
		}).
		Return(true, nil)
	d.recorder.EXPECT().
		Record(gomock.Any(), "transfer.success", "cf_ref_002", domain.EventOutcomeApplied, body)

	w := postWebhook(d.handler, body, "valid-sig")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebhookHandler_InvalidSignature(t *testing.T) {
	d := setupWebhookHandler(t)
	defer d.ctrl.Finish()

	body := []byte(`{"event":"charge.success","data":{}}`)
	expectSettings(d)
	d.sigSvc.EXPECT().Verify("sk_test_secret", body, "bad-sig").Return(false)
	// Engine and recorder must never see the event.

	w := postWebhook(d.handler, body, "bad-sig")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "GW_002", resp["error_code"])
}

func TestWebhookHandler_MalformedEnvelope(t *testing.T) {
	d := setupWebhookHandler(t)
	defer d.ctrl.Finish()

	body := []byte(`{not json`)
	expectSettings(d)
	d.sigSvc.EXPECT().Verify("sk_test_secret", body, "valid-sig").Return(true)

	w := postWebhook(d.handler, body, "valid-sig")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "GW_003", resp["error_code"])
}

func TestWebhookHandler_UnhandledEventType(t *testing.T) {
	d := setupWebhookHandler(t)
	defer d.ctrl.Finish()

	body := []byte(`{"event":"subscription.create","data":{}}`)
	expectSettings(d)
	d.sigSvc.EXPECT().Verify("sk_test_secret", body, "valid-sig").Return(true)
	d.recorder.EXPECT().
		Record(gomock.Any(), "subscription.create", "", domain.EventOutcomeDiscarded, body)

	w := postWebhook(d.handler, body, "valid-sig")

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])
}

func TestWebhookHandler_DuplicateAcknowledged(t *testing.T) {
	d := setupWebhookHandler(t)
	defer d.ctrl.Finish()

	body := []byte(`{"event":"charge.success","data":{"reference":"cf_ref_001","status":"success"}}`)
	expectSettings(d)
	d.sigSvc.EXPECT().Verify("sk_test_secret", body, "valid-sig").Return(true)
	d.engine.EXPECT().ProcessCharge(gomock.Any(), gomock.Any()).Return(false, nil)
	d.recorder.EXPECT().
		Record(gomock.Any(), "charge.success", "cf_ref_001", domain.EventOutcomeDiscarded, body)

	w := postWebhook(d.handler, body, "valid-sig")

	// Duplicates are acknowledged so the gateway stops redelivering.
	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])
}

func TestWebhookHandler_EngineErrorStillAcknowledged(t *testing.T) {
	d := setupWebhookHandler(t)
	defer d.ctrl.Finish()

	body := []byte(`{"event":"transfer.success","data":{"reference":"cf_ref_002","status":"success","id":555}}`)
	expectSettings(d)
	d.sigSvc.EXPECT().Verify("sk_test_secret", body, "valid-sig").Return(true)
	d.engine.EXPECT().
		ProcessTransfer(gomock.Any(), gomock.Any()).
		Return(false, apperror.ErrGatewayLookup(assert.AnError))
	d.recorder.EXPECT().
		Record(gomock.Any(), "transfer.success", "cf_ref_002", domain.EventOutcomeErrored, body)

	w := postWebhook(d.handler, body, "valid-sig")
	assert.Equal(t, http.StatusOK, w.Code)
}
