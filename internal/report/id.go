package report

import (
	"encoding/binary"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const idSuffixLen = 6

// NewID returns an id of the form AIQ-YYYYMMDD-XXXXXX where the suffix is six
// uppercase base-36 characters.
func NewID(now time.Time) string {
	u := uuid.New()
	n := binary.BigEndian.Uint64(u[:8])
	suffix := strings.ToUpper(strconv.FormatUint(n, 36))
	if len(suffix) < idSuffixLen {
		suffix = strings.Repeat("0", idSuffixLen-len(suffix)) + suffix
	}
	return "AIQ-" + now.UTC().Format("20060102") + "-" + suffix[len(suffix)-idSuffixLen:]
}
