package officer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spotlight-project/spotlight/core/officer"
)

func TestRankOrdinal(t *testing.T) {
	chain := []officer.Rank{
		officer.RankCadet,
		officer.RankOfficer,
		officer.RankDetective,
		officer.RankCorporal,
		officer.RankSergeant,
		officer.RankLieutenant,
		officer.RankCaptain,
		officer.RankMajor,
		officer.RankDeputyChief,
		officer.RankChief,
		officer.RankSheriff,
	}
	for i := 1; i < len(chain); i++ {
		assert.Truef(t, chain[i].Higher(chain[i-1]), "%s should outrank %s", chain[i], chain[i-1])
		assert.Falsef(t, chain[i-1].Higher(chain[i]), "%s should not outrank %s", chain[i-1], chain[i])
	}
}

func TestRankUnknown(t *testing.T) {
	unknown := officer.Rank("INTERN")
	assert.Equal(t, 0, unknown.Ordinal())
	assert.True(t, officer.RankCadet.Higher(unknown))
	assert.False(t, unknown.Higher(officer.RankCadet))
	assert.False(t, unknown.Higher(officer.Rank("VOLUNTEER")))
}

func TestOfficerFullName(t *testing.T) {
	cases := []struct {
		name     string
		officer  officer.Officer
		expected string
	}{
		{
			name:     "AllParts",
			officer:  officer.Officer{FirstName: "John", MiddleName: "Q", LastName: "Doe"},
			expected: "John Q Doe",
		},
		{
			name:     "NoMiddleName",
			officer:  officer.Officer{FirstName: "John", LastName: "Doe"},
			expected: "John Doe",
		},
		{
			name:     "LastNameOnly",
			officer:  officer.Officer{LastName: "Doe"},
			expected: "Doe",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.officer.FullName())
		})
	}
}
