package employment

// Reconcile collapses all raw records for one (officer, agency) pair into a
// single canonical record. The merge is order-independent for dates and rank:
//
//   - EarliestDate is the minimum non-nil earliest date, nil if all are nil.
//   - LatestDate is the maximum non-nil latest date, nil if all are nil.
//   - HighestRank is the maximum non-nil rank by ordinal, nil if all are nil.
//
// OfficerID, AgencyID and BadgeNumber are taken from the first record, and
// CurrentlyEmployed from the first record unless overridden, so callers must
// pass records in reporting-priority order when no override is given.
// Consistency of identifiers across records is the caller's precondition;
// Reconcile does not validate it.
//
// Returns ErrNoRecords for an empty input.
func Reconcile(records []Record, overrideCurrentlyEmployed *bool) (CanonicalRecord, error) {
	if len(records) == 0 {
		return CanonicalRecord{}, ErrNoRecords
	}

	first := records[0]
	out := CanonicalRecord{
		OfficerID:         first.OfficerID,
		AgencyID:          first.AgencyID,
		BadgeNumber:       first.BadgeNumber,
		CurrentlyEmployed: first.CurrentlyEmployed,
	}
	if overrideCurrentlyEmployed != nil {
		out.CurrentlyEmployed = *overrideCurrentlyEmployed
	}

	for i := range records {
		rec := records[i]

		if rec.EarliestDate != nil {
			if out.EarliestDate == nil || rec.EarliestDate.Before(*out.EarliestDate) {
				d := *rec.EarliestDate
				out.EarliestDate = &d
			}
		}
		if rec.LatestDate != nil {
			if out.LatestDate == nil || rec.LatestDate.After(*out.LatestDate) {
				d := *rec.LatestDate
				out.LatestDate = &d
			}
		}
		if rec.HighestRank != nil {
			if out.HighestRank == nil || rec.HighestRank.Higher(*out.HighestRank) {
				r := *rec.HighestRank
				out.HighestRank = &r
			}
		}
	}

	return out, nil
}
