package model

import "slices"

// Kind is the closed vocabulary of node kinds.
type Kind string

// Stratigraphic kinds.
const (
	KindUS         Kind = "US"
	KindUSVs       Kind = "USVs"
	KindUSVn       Kind = "USVn"
	KindSeriesSU   Kind = "serSU"
	KindSeriesUSVs Kind = "serUSVs"
	KindSeriesUSVn Kind = "serUSVn"
	KindSF         Kind = "SF"
	KindVSF        Kind = "VSF"
	KindUSD        Kind = "USD"
	KindTSU        Kind = "TSU"
	KindContinuity Kind = "BR"
	KindEvent      Kind = "EVENT"
	KindUnknown    Kind = "unknown"
)

// Paradata kinds.
const (
	KindDocument  Kind = "document"
	KindProperty  Kind = "property"
	KindExtractor Kind = "extractor"
	KindCombiner  Kind = "combiner"
)

// Group kinds.
const (
	KindActivityGroup   Kind = "activity_group"
	KindParadataGroup   Kind = "paradata_group"
	KindTimeBranchGroup Kind = "time_branch_group"
	KindGroup           Kind = "generic_group"
)

// Remaining kinds, each its own family.
const (
	KindEpoch          Kind = "epoch"
	KindAuthor         Kind = "author"
	KindLink           Kind = "link"
	KindGeo            Kind = "geo_position"
	KindRepresentation Kind = "representation"
)

// Family groups kinds that share validation treatment.
type Family int

const (
	FamilyNone Family = iota
	FamilyStrat
	FamilyParadata
	FamilyGroup
	FamilyEpoch
	FamilyAuthor
	FamilyLink
	FamilyGeo
	FamilyRepresentation
)

var familyNames = map[Family]string{
	FamilyNone:           "none",
	FamilyStrat:          "strat",
	FamilyParadata:       "paradata",
	FamilyGroup:          "group",
	FamilyEpoch:          "epoch",
	FamilyAuthor:         "author",
	FamilyLink:           "link",
	FamilyGeo:            "geo",
	FamilyRepresentation: "representation",
}

// String returns the family name used in rule tables ("strat", "paradata", ...).
func (f Family) String() string { return familyNames[f] }

// ParseFamily resolves a family name as written in a rule table.
func ParseFamily(s string) (Family, bool) {
	for f, name := range familyNames {
		if name == s && f != FamilyNone {
			return f, true
		}
	}
	return FamilyNone, false
}

// FamilyOf returns the family of k, or FamilyNone for kinds outside the
// vocabulary.
func FamilyOf(k Kind) Family {
	if spec, ok := kindTable[k]; ok {
		return spec.family
	}
	return FamilyNone
}

// Family is shorthand for FamilyOf(k).
func (k Kind) Family() Family { return FamilyOf(k) }

// IsStratigraphic reports whether k belongs to the stratigraphic family.
func (k Kind) IsStratigraphic() bool { return FamilyOf(k) == FamilyStrat }

// IsParadata reports whether k belongs to the paradata family.
func (k Kind) IsParadata() bool { return FamilyOf(k) == FamilyParadata }

// IsGroup reports whether k is one of the group kinds.
func (k Kind) IsGroup() bool { return FamilyOf(k) == FamilyGroup }

// IsPhysical reports whether units of this kind persist until an explicit
// continuity marker ends them. Only plain units and unit series do;
// documentary and virtual kinds do not.
func (k Kind) IsPhysical() bool { return k == KindUS || k == KindSeriesSU }

// IsKnown reports whether k is part of the vocabulary.
func (k Kind) IsKnown() bool {
	_, ok := kindTable[k]
	return ok
}

// ParseKind resolves a kind name. Matching is exact.
func ParseKind(s string) (Kind, bool) {
	k := Kind(s)
	if _, ok := kindTable[k]; ok {
		return k, true
	}
	return "", false
}

// ParseKindOrUnknown resolves a kind name, mapping anything unrecognised
// to KindUnknown.
func ParseKindOrUnknown(s string) Kind {
	if k, ok := ParseKind(s); ok {
		return k
	}
	return KindUnknown
}

// Kinds returns every kind in the vocabulary, sorted by name.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kindTable))
	for k := range kindTable {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// KindsOf returns the kinds of family f, sorted by name.
func KindsOf(f Family) []Kind {
	var out []Kind
	for k, spec := range kindTable {
		if spec.family == f {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return out
}
