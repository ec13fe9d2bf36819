package broadcast_test

import (
	"encoding/json"
	"testing"

	"capacity/internal/core/domain/model/broadcast"
	"capacity/internal/core/domain/model/kernel"
	"capacity/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelID_String(t *testing.T) {
	id := kernel.MustUUIDFromString("550e8400-e29b-41d4-a716-446655440000")

	assert.Equal(t, "driver:550e8400-e29b-41d4-a716-446655440000", broadcast.DriverChannel(id).String())
	assert.Equal(t, "shipment:550e8400-e29b-41d4-a716-446655440000", broadcast.ShipmentChannel(id).String())
	assert.Equal(t, "user:550e8400-e29b-41d4-a716-446655440000", broadcast.UserChannel(id).String())
	assert.Equal(t, "public", broadcast.PublicChannel().String())
}

func TestParseChannelID(t *testing.T) {
	id := kernel.NewUUID()

	tests := []struct {
		in      string
		want    broadcast.ChannelID
		wantErr bool
	}{
		{in: "public", want: broadcast.PublicChannel()},
		{in: "driver:" + id.String(), want: broadcast.DriverChannel(id)},
		{in: "shipment:" + id.String(), want: broadcast.ShipmentChannel(id)},
		{in: "user:" + id.String(), want: broadcast.UserChannel(id)},
		{in: "fleet:" + id.String(), wantErr: true},
		{in: "driver:not-a-uuid", wantErr: true},
		{in: "driver", wantErr: true},
		{in: "public:" + id.String(), wantErr: true},
		{in: "driver:00000000-0000-0000-0000-000000000000", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := broadcast.ParseChannelID(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestChannelID_JSON(t *testing.T) {
	c := broadcast.DriverChannel(kernel.NewUUID())

	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `"`+c.String()+`"`, string(b))

	var back broadcast.ChannelID
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, c, back)

	assert.Error(t, json.Unmarshal([]byte(`"galaxy:1"`), &back))
}

func TestChannelID_IsPublic(t *testing.T) {
	assert.True(t, broadcast.PublicChannel().IsPublic())
	assert.False(t, broadcast.UserChannel(kernel.NewUUID()).IsPublic())
}
