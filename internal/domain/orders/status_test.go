package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop/internal/domain/errs"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Status
		wantErr bool
	}{
		{name: "pending", input: "pending", want: StatusPending},
		{name: "processing", input: "processing", want: StatusProcessing},
		{name: "shipped", input: "shipped", want: StatusShipped},
		{name: "delivered", input: "delivered", want: StatusDelivered},
		{name: "cancelled", input: "cancelled", want: StatusCancelled},
		{name: "unknown value", input: "refunded", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "wrong case", input: "Pending", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStatus(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errs.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusProcessing.Terminal())
	assert.False(t, StatusShipped.Terminal())
	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusCancelled.Terminal())
}

func TestCanTransition(t *testing.T) {
	open := []Status{StatusPending, StatusProcessing, StatusShipped}
	terminal := []Status{StatusDelivered, StatusCancelled}
	all := append(append([]Status{}, open...), terminal...)

	// Any open order can move anywhere, including backwards and to itself.
	for _, from := range open {
		for _, to := range all {
			assert.True(t, CanTransition(from, to), "%s -> %s", from, to)
		}
	}

	// Terminal states never move again, not even to themselves.
	for _, from := range terminal {
		for _, to := range all {
			assert.False(t, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestOrderNumberGenerator(t *testing.T) {
	gen := NewOrderNumberGenerator("test-secret")
	gen.now = func() time.Time { return time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC) }

	a := gen.Generate(42)
	b := gen.Generate(42)

	assert.Regexp(t, `^SHOP-2609-[A-Z2-7]{8}$`, a)
	assert.LessOrEqual(t, len(a), 20, "must fit the order_number column")
	assert.NotEqual(t, a, b, "nonce must make repeated generation distinct")
}

func TestPublicRefEncoder(t *testing.T) {
	enc, err := NewPublicRefEncoder("test-salt")
	require.NoError(t, err)

	ref, err := enc.Encode(12345)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(ref), 10)
	assert.NotContains(t, ref, "12345", "ref must not leak the raw id")

	id, err := enc.Decode(ref)
	require.NoError(t, err)
	assert.Equal(t, int64(12345), id)

	_, err = enc.Decode("not-a-ref")
	assert.Error(t, err)

	other, err := NewPublicRefEncoder("different-salt")
	require.NoError(t, err)
	_, err = other.Decode(ref)
	assert.Error(t, err, "refs are salt-specific")
}
