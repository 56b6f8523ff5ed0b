package model

// StratInfo is the static display metadata of a stratigraphic kind.
type StratInfo struct {
	Symbol          string `json:"symbol" toml:"symbol"`
	Label           string `json:"label" toml:"label"`
	LongDescription string `json:"long_description" toml:"long_description"`
}

// kindSpec is one row of the static variant table.
type kindSpec struct {
	family  Family
	info    StratInfo
	payload func() Payload
}

func strat(symbol, label, long string) kindSpec {
	info := StratInfo{Symbol: symbol, Label: label, LongDescription: long}
	return kindSpec{
		family:  FamilyStrat,
		info:    info,
		payload: func() Payload { p := info; return &p },
	}
}

func other(f Family, payload func() Payload) kindSpec {
	return kindSpec{family: f, payload: payload}
}

func empty() Payload { return nil }

// kindTable maps every kind to its family and payload constructor.
var kindTable = map[Kind]kindSpec{
	KindUS: strat("white rectangle", "Stratigraphic unit",
		"A physical layer, cut or structure identified during excavation."),
	KindUSVs: strat("black parallelogram", "Structural virtual unit",
		"A reconstructed structural element hypothesised from evidence."),
	KindUSVn: strat("black hexagon", "Non-structural virtual unit",
		"A reconstructed non-structural element hypothesised from evidence."),
	KindSeriesSU: strat("white ellipse", "Series of stratigraphic units",
		"A group of physical units sharing the same stratigraphic behaviour."),
	KindSeriesUSVs: strat("black ellipse, blue border", "Series of structural virtual units",
		"A group of structural virtual units reconstructed together."),
	KindSeriesUSVn: strat("black ellipse, green border", "Series of non-structural virtual units",
		"A group of non-structural virtual units reconstructed together."),
	KindSF: strat("white octagon", "Special find",
		"A find preserved in its original position that needs its own record."),
	KindVSF: strat("black octagon", "Virtual special find",
		"A reconstructed special find, for example a fragment completed virtually."),
	KindUSD: strat("white rounded rectangle", "Documentary unit",
		"A unit known only from documentary sources."),
	KindTSU: strat("white diamond", "Transformation unit",
		"A unit describing a transformation applied to other units."),
	KindContinuity: strat("small black bar", "Continuity",
		"Marks the last epoch in which a unit is still in use."),
	KindEvent: strat("white trapezoid", "Stratigraphic event",
		"An event affecting the stratigraphic sequence."),
	KindUnknown: strat("grey rectangle", "Unknown",
		"A stratigraphic node whose visual encoding could not be classified."),

	KindDocument:  other(FamilyParadata, func() Payload { return &DocumentPayload{} }),
	KindProperty:  other(FamilyParadata, func() Payload { return &PropertyPayload{PropertyType: "string"} }),
	KindExtractor: other(FamilyParadata, empty),
	KindCombiner:  other(FamilyParadata, empty),

	KindActivityGroup:   other(FamilyGroup, empty),
	KindParadataGroup:   other(FamilyGroup, empty),
	KindTimeBranchGroup: other(FamilyGroup, empty),
	KindGroup:           other(FamilyGroup, empty),

	KindEpoch:          other(FamilyEpoch, func() Payload { return &EpochPayload{Color: "#FFFFFF"} }),
	KindAuthor:         other(FamilyAuthor, func() Payload { return &AuthorPayload{} }),
	KindLink:           other(FamilyLink, func() Payload { return &LinkPayload{} }),
	KindGeo:            other(FamilyGeo, func() Payload { return &GeoPayload{} }),
	KindRepresentation: other(FamilyRepresentation, func() Payload { return &RepresentationPayload{Scale: [3]float64{1, 1, 1}} }),
}

// Info returns the static display metadata for a stratigraphic kind.
// The second result is false for kinds outside the stratigraphic family.
func Info(k Kind) (StratInfo, bool) {
	spec, ok := kindTable[k]
	if !ok || spec.family != FamilyStrat {
		return StratInfo{}, false
	}
	return spec.info, true
}
