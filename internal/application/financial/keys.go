package financial

import (
	"fmt"
	"time"

	"github.com/rentdesk/backend/internal/domain/rental"
)

// Cache keys are versioned so the snapshot shape can evolve without a
// manual flush. The namespace is strictly per-scope: sharing one
// namespace across scopes would turn bulk invalidation into a
// data-isolation bug.
const keyVersion = "financial-stats:v2"

// YearKey returns the cache key for a scope's yearly stats
func YearKey(scope rental.Scope, year int) string {
	return fmt.Sprintf("%s:%s:%s:%d", keyVersion, scope.Type, scope.ID, year)
}

// MonthKey returns the cache key for a scope's monthly stats
func MonthKey(scope rental.Scope, period rental.Period) string {
	return fmt.Sprintf("%s:%s:%s:%d:%02d", keyVersion, scope.Type, scope.ID, period.Year, int(period.Month))
}

// Namespace returns the scope's cache namespace
func Namespace(scope rental.Scope) string {
	return fmt.Sprintf("financials:%s:%s", scope.Type, scope.ID)
}

// KeysForYear enumerates every cache key a mutation in the scope can
// affect for one year: the year key plus all twelve month keys. The
// construction mirrors the read path exactly.
func KeysForYear(scope rental.Scope, year int) []string {
	keys := make([]string, 0, 13)
	keys = append(keys, YearKey(scope, year))
	for month := time.January; month <= time.December; month++ {
		keys = append(keys, MonthKey(scope, rental.Period{Year: year, Month: month}))
	}
	return keys
}
