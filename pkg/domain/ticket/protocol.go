package ticket

import (
	"fmt"
	"math/rand"
	"time"
)

// GenerateProtocol builds the human-facing tracking code for a new ticket:
// the creation time in unix milliseconds plus a zero-padded four digit random
// suffix. The code is opaque after generation; uniqueness across concurrently
// open tickets relies on the millisecond prefix.
func GenerateProtocol(now time.Time) string {
	return fmt.Sprintf("%d-%04d", now.UnixMilli(), rand.Intn(10000))
}
