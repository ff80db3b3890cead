package finance

// KPISnapshot is the derived rent-collection aggregate for one scope and
// period. It is never persisted; its lifetime is one cache TTL window and
// it is always rederivable from source records. Amounts are in currency
// minor units, rates are whole percentages.
type KPISnapshot struct {
	TotalExpected  int64 `json:"totalExpected"`
	TotalCollected int64 `json:"totalCollected"`
	CollectionRate int64 `json:"collectionRate"`
	// OccupancyRate is reserved; always 0 until unit inventory lands.
	OccupancyRate int64 `json:"occupancyRate"`
	PendingCount  int   `json:"pendingCount"`
	OverdueCount  int   `json:"overdueCount"`
	PaidCount     int   `json:"paidCount"`
	TotalExpenses int64 `json:"totalExpenses"`
}

// ActiveLeaseCount returns the number of active leases that were classified
func (s KPISnapshot) ActiveLeaseCount() int {
	return s.PendingCount + s.OverdueCount + s.PaidCount
}
