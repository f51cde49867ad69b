package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndCheck(t *testing.T) {
	h, err := HashPassword("Sup3rSecret")
	require.NoError(t, err)
	require.NotEqual(t, "Sup3rSecret", h)

	require.True(t, CheckPassword(h, "Sup3rSecret"))
	require.False(t, CheckPassword(h, "wrong"))
	require.False(t, CheckPassword("not-a-hash", "Sup3rSecret"))
}
