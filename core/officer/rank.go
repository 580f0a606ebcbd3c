package officer

// Rank is an ordinal-comparable officer rank. Ranks not in the known
// ordering compare below every known rank.
type Rank string

const (
	RankCadet       Rank = "CADET"
	RankOfficer     Rank = "OFFICER"
	RankDetective   Rank = "DETECTIVE"
	RankCorporal    Rank = "CORPORAL"
	RankSergeant    Rank = "SERGEANT"
	RankLieutenant  Rank = "LIEUTENANT"
	RankCaptain     Rank = "CAPTAIN"
	RankMajor       Rank = "MAJOR"
	RankDeputyChief Rank = "DEPUTY_CHIEF"
	RankChief       Rank = "CHIEF"
	RankSheriff     Rank = "SHERIFF"
)

var rankOrdinals = map[Rank]int{
	RankCadet:       1,
	RankOfficer:     2,
	RankDetective:   3,
	RankCorporal:    4,
	RankSergeant:    5,
	RankLieutenant:  6,
	RankCaptain:     7,
	RankMajor:       8,
	RankDeputyChief: 9,
	RankChief:       10,
	RankSheriff:     11,
}

func (r Rank) String() string { return string(r) }

// Ordinal returns the rank's position in the chain of command, 0 for
// unknown ranks.
func (r Rank) Ordinal() int { return rankOrdinals[r] }

// Higher reports whether r outranks other.
func (r Rank) Higher(other Rank) bool { return r.Ordinal() > other.Ordinal() }
