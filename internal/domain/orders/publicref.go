package orders

import (
	"fmt"

	hashids "github.com/speps/go-hashids/v2"
)

// PublicRefEncoder turns internal order ids into opaque references suitable
// for tracking links, so sequential ids are not exposed outside the API.
type PublicRefEncoder struct {
	h *hashids.HashID
}

func NewPublicRefEncoder(salt string) (*PublicRefEncoder, error) {
	hd := hashids.NewData()
	hd.Salt = salt
	hd.MinLength = 10
	h, err := hashids.NewWithData(hd)
	if err != nil {
		return nil, fmt.Errorf("init public ref encoder: %w", err)
	}
	return &PublicRefEncoder{h: h}, nil
}

func (e *PublicRefEncoder) Encode(orderID int64) (string, error) {
	ref, err := e.h.EncodeInt64([]int64{orderID})
	if err != nil {
		return "", fmt.Errorf("encode order ref: %w", err)
	}
	return ref, nil
}

func (e *PublicRefEncoder) Decode(ref string) (int64, error) {
	ids, err := e.h.DecodeInt64WithError(ref)
	if err != nil || len(ids) != 1 {
		return 0, fmt.Errorf("invalid order ref %q", ref)
	}
	return ids[0], nil
}
