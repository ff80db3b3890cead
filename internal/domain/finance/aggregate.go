package finance

// Aggregate sums snapshots into one and rederives the collection rate
// from the summed amounts. Used to roll monthly snapshots up to a year.
func Aggregate(snapshots ...KPISnapshot) KPISnapshot {
	var total KPISnapshot
	for _, s := range snapshots {
		total.TotalExpected += s.TotalExpected
		total.TotalCollected += s.TotalCollected
		total.PendingCount += s.PendingCount
		total.OverdueCount += s.OverdueCount
		total.PaidCount += s.PaidCount
		total.TotalExpenses += s.TotalExpenses
	}
	total.CollectionRate = collectionRate(total.TotalCollected, total.TotalExpected)
	return total
}
