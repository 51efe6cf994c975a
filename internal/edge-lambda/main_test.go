package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"rrs-edge/internal/edge"
)

func TestNewHandler(t *testing.T) {
	handle, err := newHandler("")
	require.NoError(t, err)
	ev, err := edge.Decode([]byte(`{"request": {"uri": "/img/photo.png", "querystring": {"width": {"value": "1080"}}}}`))
	require.NoError(t, err)
	req, err := handle(context.Background(), ev)
	require.NoError(t, err)
	require.Equal(t, "/img/photo_rrs_w1080.webp", req.URI)

	handle, err = newHandler("single")
	require.NoError(t, err)
	ev, err = edge.Decode([]byte(`{"request": {"uri": "/a/b/c.jpeg", "querystring": {"width": {"value": "500"}}}}`))
	require.NoError(t, err)
	req, err = handle(context.Background(), ev)
	require.NoError(t, err)
	require.Equal(t, "/a/b/c_rrs_w500.jpeg", req.URI)

	_, err = newHandler("nope")
	require.Error(t, err)
}
