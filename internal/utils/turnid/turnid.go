package turnid

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyOnce sync.Once
	entropyMu   sync.Mutex
	entropy     *ulid.MonotonicEntropy
)

func newEntropy() *ulid.MonotonicEntropy {
	entropyOnce.Do(func() {
		source := rand.NewSource(time.Now().UnixNano())
		entropy = ulid.Monotonic(rand.New(source), 0)
	})
	return entropy
}

func generate(prefix string) string {
	// MonotonicEntropy is not safe for concurrent readers.
	entropyMu.Lock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), newEntropy())
	entropyMu.Unlock()
	return prefix + "_" + strings.ToLower(id.String())
}

// NewTurnID returns a turn_* ULID string.
func NewTurnID() string {
	return generate("turn")
}

// NewConversationID returns a conv_* ULID string.
func NewConversationID() string {
	return generate("conv")
}

// IsValid reports whether the string is a prefixed ULID.
func IsValid(value string) bool {
	idx := strings.IndexByte(value, '_')
	if idx <= 0 {
		return false
	}
	_, err := ulid.Parse(strings.ToUpper(value[idx+1:]))
	return err == nil
}
