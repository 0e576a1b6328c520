package action

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestLoginFrameShape pins spec.md scenario S2: the LOGIN body is
// email\0digest\0iOS\01.0.0\0App.
func TestLoginFrameShape(t *testing.T) {
	a := Login{Email: "a@b", PasswordDigest: "DIGEST", AppName: "App"}
	body, err := a.Encode(JSONCodec{})
	require.NoError(t, err)
	require.Equal(t, "a@b\x00DIGEST\x00iOS\x001.0.0\x00App", string(body))
	require.Equal(t, OpLogin, a.Opcode())
	require.Equal(t, ReplyResponseOnly, a.Kind())
}

func TestLoadProfileGzippedExpectsDataResponse(t *testing.T) {
	a := LoadProfileGzipped{}
	require.Equal(t, ReplyDataResponse, a.Kind())
}

func TestHardwareEncodesTargetAndCommand(t *testing.T) {
	a := Hardware{DashID: 1, DeviceID: 2, Command: "vw 10 128"}
	body, err := a.Encode(JSONCodec{})
	require.NoError(t, err)
	require.Equal(t, "1-2\x00vw\x0010\x00128", string(body))
}

func TestSetWidgetPropertyEncoding(t *testing.T) {
	a := SetWidgetProperty{DashID: 1, DeviceID: 2, Pin: "5", Property: "color", Value: "#ff0000"}
	body, err := a.Encode(JSONCodec{})
	require.NoError(t, err)
	require.Equal(t, "1-2\x005\x00color\x00#ff0000", string(body))
}

func TestDecodeHardwarePinUpdate(t *testing.T) {
	ev := DecodeEvent(OpHardware, 1, []byte("1-2\x00vw\x0010\x00128"))
	pu, ok := ev.(PinUpdateEvent)
	require.True(t, ok)
	require.Equal(t, 1, pu.DashID)
	require.Equal(t, 2, pu.DeviceID)
	require.Equal(t, PinVirtual, pu.Kind)
	require.Equal(t, 10, pu.Pin)
	require.Equal(t, []string{"128"}, pu.Values)
}

func TestDecodeWidgetPropertyChanged(t *testing.T) {
	ev := DecodeEvent(OpSetWidgetProperty, 1, []byte("1-2\x005\x00color\x00#ff0000"))
	wp, ok := ev.(WidgetPropertyChangedEvent)
	require.True(t, ok)
	require.Equal(t, "color", wp.Property)
	require.Equal(t, "#ff0000", wp.Value)
}

func TestDecodeUnknownOpcodeProducesNoEvent(t *testing.T) {
	ev := DecodeEvent(Opcode(250), 1, nil)
	require.Nil(t, ev)
}

func TestDecodeKnownOpcodeFallsBackToStructured(t *testing.T) {
	ev := DecodeEvent(OpGetServer, 1, []byte(`{"host":"x"}`))
	se, ok := ev.(StructuredEvent)
	require.True(t, ok)
	require.Equal(t, OpGetServer, se.Cmd)

	var out struct{ Host string }
	require.NoError(t, se.Decode(JSONCodec{}, &out))
	require.Equal(t, "x", out.Host)
}

func TestResponseCodeString(t *testing.T) {
	require.Equal(t, "OK", CodeOK.String())
	require.Equal(t, "ServerError", CodeServerError.String())
	require.Equal(t, "Unknown", ResponseCode(9999).String())
}

func TestStructuredActionMarshalsValue(t *testing.T) {
	type dash struct{ ID int }
	a := Structured{Cmd: OpCreateDash, Reply: ReplyResponseOnly, Value: dash{ID: 7}}
	body, err := a.Encode(JSONCodec{})
	require.NoError(t, err)
	require.JSONEq(t, `{"ID":7}`, string(body))
}
