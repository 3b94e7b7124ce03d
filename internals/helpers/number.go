// file: internals/helpers/number.go
package helper

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenNumber membuat nomor dokumen: PREFIX-YYYYMMDD-HHMMSS-XXXXXXXX.
// Dipakai untuk schedule_number, transaction_number, receipt_number & order_id gateway.
func GenNumber(prefix string, now time.Time) string {
	u := strings.ReplaceAll(uuid.New().String(), "-", "")
	return prefix + "-" + now.Format("20060102-150405") + "-" + strings.ToUpper(u[:8])
}
