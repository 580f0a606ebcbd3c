package employment_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/spotlight-project/spotlight/core/employment"
	"github.com/spotlight-project/spotlight/core/officer"
)

func date(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func rank(r officer.Rank) *officer.Rank { return &r }

func boolPtr(b bool) *bool { return &b }

func TestReconcile(t *testing.T) {
	cases := []struct {
		name     string
		records  []employment.Record
		override *bool
		expected employment.CanonicalRecord
	}{
		{
			name: "TwoOverlappingStints",
			records: []employment.Record{
				{
					OfficerID:    "off-1",
					AgencyID:     "ag-1",
					BadgeNumber:  "1234",
					EarliestDate: date("2015-03-14"),
					HighestRank:  rank(officer.RankOfficer),
				},
				{
					OfficerID:    "off-1",
					AgencyID:     "ag-1",
					BadgeNumber:  "1234",
					EarliestDate: date("2018-08-12"),
					LatestDate:   date("2020-01-01"),
					HighestRank:  rank(officer.RankSergeant),
				},
			},
			expected: employment.CanonicalRecord{
				OfficerID:    "off-1",
				AgencyID:     "ag-1",
				BadgeNumber:  "1234",
				EarliestDate: date("2015-03-14"),
				LatestDate:   date("2020-01-01"),
				HighestRank:  rank(officer.RankSergeant),
			},
		},
		{
			name: "SingleRecord",
			records: []employment.Record{
				{
					OfficerID:         "off-1",
					AgencyID:          "ag-1",
					BadgeNumber:       "99",
					EarliestDate:      date("2019-06-01"),
					HighestRank:       rank(officer.RankDetective),
					CurrentlyEmployed: true,
				},
			},
			expected: employment.CanonicalRecord{
				OfficerID:         "off-1",
				AgencyID:          "ag-1",
				BadgeNumber:       "99",
				EarliestDate:      date("2019-06-01"),
				HighestRank:       rank(officer.RankDetective),
				CurrentlyEmployed: true,
			},
		},
		{
			name: "AllDatesNilStayNil",
			records: []employment.Record{
				{OfficerID: "off-1", AgencyID: "ag-1", HighestRank: rank(officer.RankCadet)},
				{OfficerID: "off-1", AgencyID: "ag-1"},
			},
			expected: employment.CanonicalRecord{
				OfficerID:   "off-1",
				AgencyID:    "ag-1",
				HighestRank: rank(officer.RankCadet),
			},
		},
		{
			name: "RankMaxIsOrderIndependent",
			records: []employment.Record{
				{OfficerID: "off-1", AgencyID: "ag-1", HighestRank: rank(officer.RankChief)},
				{OfficerID: "off-1", AgencyID: "ag-1", HighestRank: rank(officer.RankCadet)},
				{OfficerID: "off-1", AgencyID: "ag-1", HighestRank: rank(officer.RankLieutenant)},
			},
			expected: employment.CanonicalRecord{
				OfficerID:   "off-1",
				AgencyID:    "ag-1",
				HighestRank: rank(officer.RankChief),
			},
		},
		{
			name: "BadgeAndStatusFromFirstRecord",
			records: []employment.Record{
				{OfficerID: "off-1", AgencyID: "ag-1", BadgeNumber: "555", CurrentlyEmployed: true},
				{OfficerID: "off-1", AgencyID: "ag-1", BadgeNumber: "111", CurrentlyEmployed: false},
			},
			expected: employment.CanonicalRecord{
				OfficerID:         "off-1",
				AgencyID:          "ag-1",
				BadgeNumber:       "555",
				CurrentlyEmployed: true,
			},
		},
		{
			name: "OverrideCurrentlyEmployed",
			records: []employment.Record{
				{OfficerID: "off-1", AgencyID: "ag-1", CurrentlyEmployed: true},
			},
			override: boolPtr(false),
			expected: employment.CanonicalRecord{
				OfficerID: "off-1",
				AgencyID:  "ag-1",
			},
		},
		{
			name: "UnknownRankLosesToKnownRank",
			records: []employment.Record{
				{OfficerID: "off-1", AgencyID: "ag-1", HighestRank: rank(officer.Rank("INTERN"))},
				{OfficerID: "off-1", AgencyID: "ag-1", HighestRank: rank(officer.RankOfficer)},
			},
			expected: employment.CanonicalRecord{
				OfficerID:   "off-1",
				AgencyID:    "ag-1",
				HighestRank: rank(officer.RankOfficer),
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := employment.Reconcile(tc.records, tc.override)
			assert.NoError(t, err)
			if diff := cmp.Diff(tc.expected, actual); diff != "" {
				t.Errorf("Reconcile() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReconcileDeterministic(t *testing.T) {
	records := []employment.Record{
		{OfficerID: "off-1", AgencyID: "ag-1", BadgeNumber: "7", EarliestDate: date("2010-01-01"), HighestRank: rank(officer.RankCorporal)},
		{OfficerID: "off-1", AgencyID: "ag-1", BadgeNumber: "7", LatestDate: date("2016-11-30"), HighestRank: rank(officer.RankMajor)},
	}

	first, err := employment.Reconcile(records, nil)
	assert.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := employment.Reconcile(records, nil)
		assert.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestReconcileNoRecords(t *testing.T) {
	_, err := employment.Reconcile(nil, nil)
	assert.ErrorIs(t, err, employment.ErrNoRecords)
}

func TestReconcileDoesNotAliasInputDates(t *testing.T) {
	earliest := date("2015-03-14")
	records := []employment.Record{
		{OfficerID: "off-1", AgencyID: "ag-1", EarliestDate: earliest},
	}

	out, err := employment.Reconcile(records, nil)
	assert.NoError(t, err)

	*earliest = earliest.AddDate(5, 0, 0)
	assert.Equal(t, *date("2015-03-14"), *out.EarliestDate)
}
