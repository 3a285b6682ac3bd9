package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeVariants(t *testing.T) {
	cases := []struct {
		name  string
		frame string
		want  Inbound
	}{
		{"on", `{"type":"morse_element","state":"on"}`, MorseElement{On: true}},
		{"off", `{"type":"morse_element","state":"off"}`, MorseElement{On: false}},
		{"char", `{"type":"char_sent","char":"K","pattern":"-.-","queue_dist":2}`, CharSent{Char: "K", Pattern: "-.-", QueueDist: 2}},
		{"gap", `{"type":"char_sent"}`, CharSent{}},
		{"result ok", `{"type":"result","correct":true,"typed":"A"}`, Result{Correct: true, Typed: "A"}},
		{"result err", `{"type":"result","correct":false,"typed":"E","expected":"I","prob":40}`, Result{Typed: "E", Expected: "I", Prob: 40}},
		{"speed", `{"type":"speed_change","speed":27,"direction":"up"}`, SpeedChange{Speed: 27, Direction: Up}},
		{"speed set", `{"type":"speed_change","speed":32,"direction":"set"}`, SpeedChange{Speed: 32, Direction: Set}},
		{"started", `{"type":"session","state":"started","speed":25}`, Session{Started: true, Speed: 25}},
		{"stopped", `{"type":"session","state":"stopped"}`, Session{}},
		{"context", `{"type":"context_lost","speed":21}`, ContextLost{Speed: 21}},
		{"probs", `{"type":"probs","data":[{"char":"A","prob":0.9},{"char":"B","prob":0.1}]}`, Probs{Data: []HeatmapEntry{{"A", 0.9}, {"B", 0.1}}}},
		{"probs empty", `{"type":"probs"}`, Probs{}},
		{"status", `{"type":"status","running":true,"speed":15}`, Status{Running: true, Speed: 15}},
		{"status profile", `{"type":"status","running":false,"speed":30,"profile":3}`, Status{Speed: 30, Profile: 3, HasProfile: true}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode([]byte(tc.frame))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.want.Kind(), got.Kind())
		})
	}
}

func TestDecodeToleratesOddExtras(t *testing.T) {
	cases := []struct {
		name  string
		frame string
		want  Inbound
	}{
		{"fractional prob", `{"type":"result","correct":true,"typed":"A","expected":"A","prob":0.4}`, Result{Correct: true, Typed: "A", Expected: "A"}},
		{"string prob", `{"type":"result","correct":false,"typed":"E","expected":"I","prob":"high"}`, Result{Typed: "E", Expected: "I"}},
		{"numeric expected", `{"type":"result","correct":true,"typed":"5","expected":5}`, Result{Correct: true, Typed: "5"}},
		{"odd pattern", `{"type":"char_sent","char":"K","pattern":3,"queue_dist":"far"}`, CharSent{Char: "K"}},
		{"string profile", `{"type":"status","running":true,"speed":22,"profile":"3"}`, Status{Running: true, Speed: 22}},
		{"unknown field", `{"type":"context_lost","speed":21,"reason":{"late":true}}`, ContextLost{Speed: 21}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode([]byte(tc.frame))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeRejects(t *testing.T) {
	_, err := Decode([]byte(`{not json`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalid)

	_, err = Decode([]byte(`{"type":"telemetry"}`))
	assert.ErrorIs(t, err, ErrUnknownKind)

	for _, frame := range []string{
		`{"type":"morse_element","state":"maybe"}`,
		`{"type":"result","typed":"A"}`,
		`{"type":"result","correct":true}`,
		`{"type":"speed_change","speed":30,"direction":"sideways"}`,
		`{"type":"session"}`,
		`{"type":"context_lost"}`,
		`{"type":"status","speed":20}`,
		`{"type":"status","running":"yes","speed":20}`,
		`{"type":"result","correct":true,"typed":1}`,
		`{"type":"speed_change","speed":"fast","direction":"up"}`,
		`{"type":"probs","data":[{"char":"A","prob":"x"}]}`,
		`{"type":"probs","data":[{"char":"A","prob":-1}]}`,
	} {
		_, err := Decode([]byte(frame))
		assert.ErrorIs(t, err, ErrInvalid, frame)
	}
}

func TestEncodeFrames(t *testing.T) {
	cases := []struct {
		msg  Outbound
		want string
	}{
		{Key('A'), `{"type":"key","char":"A"}`},
		{Key('&'), `{"type":"key","char":"&"}`},
		{Start(1, 25), `{"type":"command","cmd":"start","profile":1,"speed":25}`},
		{Stop(), `{"type":"command","cmd":"stop"}`},
		{RequestStatus(), `{"type":"command","cmd":"status"}`},
		{RequestProbs(), `{"type":"command","cmd":"probs"}`},
		{SetSpeed(40), `{"type":"command","cmd":"speed","speed":40}`},
	}
	for _, tc := range cases {
		out, err := Encode(tc.msg)
		require.NoError(t, err)
		assert.JSONEq(t, tc.want, string(out))
	}
}

func TestRequestsPairWithReplies(t *testing.T) {
	out, err := Encode(RequestStatus())
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"command","cmd":"status"}`, string(out))
	reply, err := Decode([]byte(`{"type":"status","running":false,"speed":25}`))
	require.NoError(t, err)
	assert.Equal(t, Status{Speed: 25}, reply)

	out, err = Encode(RequestProbs())
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"command","cmd":"probs"}`, string(out))
	reply, err = Decode([]byte(`{"type":"probs","data":[{"char":"E","prob":3}]}`))
	require.NoError(t, err)
	assert.Equal(t, Probs{Data: []HeatmapEntry{{Char: "E", Prob: 3}}}, reply)
	assert.Equal(t, KindProbs, reply.Kind())
}

func TestOutboundString(t *testing.T) {
	assert.Equal(t, "key Q", Key('Q').String())
	assert.Equal(t, "command probs", RequestProbs().String())
}
