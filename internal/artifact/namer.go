package artifact

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"time"
)

// NewID derives a 32-character hex artifact identifier from the wall clock at
// hundredths-of-a-second resolution. It is a pure function of its input: two
// calls within the same hundredth of a second return the same identifier, so
// uniqueness across invocations is probabilistic, not guaranteed.
func NewID(t time.Time) string {
	ticks := t.UnixNano() / int64(10*time.Millisecond)
	sum := md5.Sum([]byte(strconv.FormatInt(ticks, 10)))
	return hex.EncodeToString(sum[:])
}
