package paystack

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"crowdfund-ledger/internal/core/domain"
	"crowdfund-ledger/internal/core/ports/mocks"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fakeHTTPClient struct {
	lastReq *http.Request
	status  int
	body    string
	err     error
}

func (f *fakeHTTPClient) Do(req *http.Request) (*http.Response, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &http.Response{
		StatusCode: f.status,
		Body:       io.NopCloser(strings.NewReader(f.body)),
	}, nil
}

func setupClient(t *testing.T, fake *fakeHTTPClient) (*Client, *mocks.MockSettingsRepository) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	settings := mocks.NewMockSettingsRepository(ctrl)
	return NewClient(fake, "https://gateway.example", settings, zerolog.Nop()), settings
}

func TestClient_GetTransfer(t *testing.T) {
	fake := &fakeHTTPClient{
		status: http.StatusOK,
		body:   `{"status":true,"message":"Transfer retrieved","data":{"fee_charged":5000,"recipient":{"type":"nuban"}}}`,
	}
	c, settings := setupClient(t, fake)
	settings.EXPECT().Get(gomock.Any()).Return(&domain.PlatformSettings{GatewaySecretKey: "sk_test_secret"}, nil)

	transfer, err := c.GetTransfer(context.Background(), 555)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), transfer.FeeChargedMinor)
	assert.Equal(t, "nuban", transfer.RecipientType)

	require.NotNil(t, fake.lastReq)
	assert.Equal(t, "https://gateway.example/transfer/555", fake.lastReq.URL.String())
	assert.Equal(t, "Bearer sk_test_secret", fake.lastReq.Header.Get("Authorization"))
}

func TestClient_GetTransfer_HTTPError(t *testing.T) {
	fake := &fakeHTTPClient{err: errors.New("connection refused")}
	c, settings := setupClient(t, fake)
	settings.EXPECT().Get(gomock.Any()).Return(&domain.PlatformSettings{GatewaySecretKey: "sk"}, nil)

	_, err := c.GetTransfer(context.Background(), 555)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch transfer 555")
}

func TestClient_GetTransfer_NonOKStatus(t *testing.T) {
	fake := &fakeHTTPClient{status: http.StatusNotFound, body: `{}`}
	c, settings := setupClient(t, fake)
	settings.EXPECT().Get(gomock.Any()).Return(&domain.PlatformSettings{GatewaySecretKey: "sk"}, nil)

	_, err := c.GetTransfer(context.Background(), 555)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestClient_GetTransfer_GatewayRejects(t *testing.T) {
	fake := &fakeHTTPClient{
		status: http.StatusOK,
		body:   `{"status":false,"message":"Transfer not found"}`,
	}
	c, settings := setupClient(t, fake)
	settings.EXPECT().Get(gomock.Any()).Return(&domain.PlatformSettings{GatewaySecretKey: "sk"}, nil)

	_, err := c.GetTransfer(context.Background(), 555)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Transfer not found")
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	c := NewClient(&fakeHTTPClient{}, "", nil, zerolog.Nop())
	assert.Equal(t, DefaultBaseURL, c.baseURL)
}
