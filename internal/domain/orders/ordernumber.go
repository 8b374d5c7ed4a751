package orders

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base32"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OrderNumberGenerator produces short, non-guessable order numbers for
// customer-facing communication (emails, support). The middle segment is the
// order month (YYMM), so support can bucket a number by eye; the tail is an
// HMAC tag over the user id and a fresh nonce, which keeps numbers
// unpredictable. Uniqueness is enforced by the orders.order_number constraint.
type OrderNumberGenerator struct {
	secret string
	now    func() time.Time
}

func NewOrderNumberGenerator(secret string) *OrderNumberGenerator {
	return &OrderNumberGenerator{secret: secret, now: time.Now}
}

// Generate returns a number like SHOP-2609-A7K2QM3X: 18 characters, inside
// the varchar(20) column.
func (g *OrderNumberGenerator) Generate(userID int64) string {
	nonce := uuid.NewString()

	mac := hmac.New(sha256.New, []byte(g.secret))
	mac.Write([]byte(fmt.Sprintf("uid:%d|nonce:%s", userID, nonce)))

	sum := mac.Sum(nil)
	tag := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(sum)

	return fmt.Sprintf("SHOP-%s-%s", g.now().Format("0601"), tag[:8])
}
