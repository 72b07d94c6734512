package query

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFirstSegment(t *testing.T) {
	require.Equal(t, "/", firstSegment(""))
	require.Equal(t, "/", firstSegment("/"))
	require.Equal(t, "/blog/", firstSegment("/blog"))
	require.Equal(t, "/blog/", firstSegment("/Blog/2024/post"))
}

func TestNormalizeHost(t *testing.T) {
	require.Equal(t, "example.com", normalizeHost("Example.com:8080"))
	require.Equal(t, "example.com", normalizeHost("example.com"))
	require.Equal(t, "[::1]", normalizeHost("[::1]"))
}
