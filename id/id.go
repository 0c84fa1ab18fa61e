package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

var (
	mu   sync.Mutex
	mono io.Reader
)

func init() {
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	// Monotonic keeps ids opened within the same millisecond ordered.
	mono = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// New returns a trade id. Ids sort lexically in the order they were issued,
// which keeps the ledger and the journal tables in open order.
func New() string {
	return At(time.Now())
}

// At returns an id stamped with t instead of the wall clock.
func At(t time.Time) string {
	mu.Lock()
	defer mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(t.UTC()), mono)
	if err != nil {
		// Only fails when entropy is exhausted or t is before the epoch.
		panic(err)
	}
	return id.String()
}

// Time extracts the issue time from an id produced by New or At.
func Time(s string) (time.Time, bool) {
	id, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, false
	}
	return ulid.Time(id.Time()), true
}

// DeviceID returns a fresh device identifier in the "device_xxxxxxxxx" form
// used by sync files.
func DeviceID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "device_" + raw[:9]
}
