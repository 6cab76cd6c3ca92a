package chat

import (
	"encoding/json"
	"errors"
	"testing"

	"shop_chat_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrame(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want InboundFrame
	}{
		{
			name: "customer join",
			raw:  `{"type":"join_room","payload":{"roomId":"R1","sessionId":"cs_1","userType":"customer"}}`,
			want: JoinRoom{RoomId: "R1", SessionId: "cs_1", UserType: "customer"},
		},
		{
			name: "admin join without session",
			raw:  `{"type":"join_room","payload":{"roomId":"R1","userType":"admin"}}`,
			want: JoinRoom{RoomId: "R1", UserType: "admin"},
		},
		{
			name: "customer join leaves session check to the hub",
			raw:  `{"type":"join_room","payload":{"roomId":"R1","userType":"customer"}}`,
			want: JoinRoom{RoomId: "R1", UserType: "customer"},
		},
		{
			name: "leave without payload",
			raw:  `{"type":"leave_room"}`,
			want: LeaveRoom{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFrame([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSendMessageKeepsBlankBody(t *testing.T) {
	got, err := ParseFrame([]byte(`{"type":"send_message","payload":{"senderName":"Budi","message":"  "}}`))
	require.NoError(t, err)
	msg, ok := got.(SendMessage)
	require.True(t, ok)
	require.NotNil(t, msg.Message)
	assert.Equal(t, "  ", *msg.Message)
}

func TestParseFrameRejects(t *testing.T) {
	for _, raw := range []string{
		`[]`,
		`{"type":"join_room"}`,
		`{"type":"join_room","payload":null}`,
		`{"type":"join_room","payload":{"roomId":"R1","userType":"owner"}}`,
		`{"type":"join_room","payload":{"roomId":42,"userType":"admin"}}`,
		`{"type":"send_message","payload":{}}`,
	} {
		_, err := ParseFrame([]byte(raw))
		require.Error(t, err, raw)
		assert.Equal(t, errorx.CodeMalformedFrame, errorx.GetCode(err), raw)
	}
}

func TestEncodeErrorHidesInternalErrors(t *testing.T) {
	var f struct {
		Type    FrameType    `json:"type"`
		Payload ErrorPayload `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(EncodeError(errors.New("dial tcp: refused")), &f))
	assert.Equal(t, FrameError, f.Type)
	assert.Equal(t, errorx.CodeServerBusy, f.Payload.Code)
	assert.Equal(t, "server busy", f.Payload.Message)

	require.NoError(t, json.Unmarshal(EncodeWarning(errorx.Wrap(errors.New("x"), errorx.CodeMetadataStale, "stale")), &f))
	assert.Equal(t, FrameWarning, f.Type)
	assert.Equal(t, ErrorPayload{Message: "stale", Code: errorx.CodeMetadataStale}, f.Payload)
}
