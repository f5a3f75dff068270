package chrono

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStandardImplLocation(t *testing.T) {
	impl, err := NewStandardImpl("")
	require.NoError(t, err)
	require.Equal(t, DefaultLocation, impl.Location().String())
	require.Equal(t, DefaultLocation, impl.Now().Location().String())

	_, err = NewStandardImpl("Not/AZone")
	require.Error(t, err)
}

func TestFixedImpl(t *testing.T) {
	instant := time.Date(2024, time.July, 1, 11, 30, 0, 0, time.UTC)
	fixed := FixedImpl{Time: instant}
	require.Equal(t, instant, fixed.Now())
	require.Equal(t, time.UTC, fixed.Location())
}
