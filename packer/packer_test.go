package packer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type line struct {
	Number int    `msgpack:"number"`
	Text   string `msgpack:"text"`
}

func TestEncodeDecodeMessage(t *testing.T) {
	raw, err := EncodeMessage(line{Number: 3, Text: "hello"})
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	var got line
	require.NoError(t, DecodeMessage(raw, &got))
	require.Equal(t, line{Number: 3, Text: "hello"}, got)
}

func TestEncodeMessage_Unsupported(t *testing.T) {
	_, err := EncodeMessage(make(chan int))
	require.Error(t, err)
}
