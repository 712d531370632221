package natsrpc

import (
	"encoding/json"
	"testing"

	"github.com/specialistvlad/hopsgo/internal/rpc"
	"github.com/specialistvlad/hopsgo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	subject string
	data    []byte
}

func TestServe(t *testing.T) {
	t.Parallel()
	h := testutil.NewHarness(t)

	var sent []published
	r := &Responder{
		cfg:        DefaultConfig(),
		dispatcher: h.Dispatcher,
		publish: func(subject string, data []byte) error {
			sent = append(sent, published{subject, data})
			return nil
		},
	}

	r.serve(h.Ctx, "_INBOX.1", []byte(`{"id":"a","route":"/displacement","args":[5,10]}`))
	r.serve(h.Ctx, "", []byte(`{"route":"/add","args":[1,2]}`))
	r.serve(h.Ctx, "_INBOX.2", []byte(`not json`))

	require.Len(t, sent, 2)
	assert.Equal(t, "_INBOX.1", sent[0].subject)

	var resp rpc.Response
	require.NoError(t, json.Unmarshal(sent[0].data, &resp))
	fs, err := resp.Floats()
	require.NoError(t, err)
	assert.Equal(t, []float64{5}, fs)
	assert.Equal(t, "a", resp.ID)

	var bad rpc.Response
	require.NoError(t, json.Unmarshal(sent[1].data, &bad))
	require.NotNil(t, bad.Error)
	assert.Equal(t, rpc.KindBadRequest, bad.Error.Kind)
	assert.Contains(t, h.Logs.String(), "Dropping NATS request without reply subject.")
}

func TestConnect_Validation(t *testing.T) {
	t.Parallel()

	_, err := Connect(DefaultConfig(), nil)
	require.ErrorContains(t, err, "not configured")

	cfg := Config{URL: "nats://127.0.0.1:4222"}
	_, err = Connect(cfg, nil)
	require.ErrorContains(t, err, "subject is required")

	assert.True(t, cfg.Enabled())
	assert.False(t, DefaultConfig().Enabled())
}
