package domain

// FindCompanion returns the record in the opposite collection whose location
// name and state match record. When record belongs to primary the companion
// set is searched; when it only appears in companion, primary is searched
// instead. The first match wins. A nil result means no match; a non-nil
// result with a nil Value means the match exists but has no data.
func FindCompanion(record MeasureRecord, primary, companion []MeasureRecord) *MeasureRecord {
	key := record.Key()
	opposite := companion
	if !containsKey(primary, key) && containsKey(companion, key) {
		opposite = primary
	}
	for i := range opposite {
		if opposite[i].Key() == key {
			match := opposite[i]
			return &match
		}
	}
	return nil
}

func containsKey(records []MeasureRecord, key LocationKey) bool {
	for i := range records {
		if records[i].Key() == key {
			return true
		}
	}
	return false
}

// CompanionIndex maps location identities to the first companion record with
// that identity, for matching whole record sets at once.
type CompanionIndex struct {
	byKey map[LocationKey]int
	set   []MeasureRecord
}

// NewCompanionIndex indexes companion records by location identity.
func NewCompanionIndex(companion []MeasureRecord) *CompanionIndex {
	idx := &CompanionIndex{
		byKey: make(map[LocationKey]int, len(companion)),
		set:   companion,
	}
	for i := range companion {
		k := companion[i].Key()
		if _, seen := idx.byKey[k]; !seen {
			idx.byKey[k] = i
		}
	}
	return idx
}

// Lookup returns the companion for record, or nil when none matches.
func (idx *CompanionIndex) Lookup(record MeasureRecord) *MeasureRecord {
	if idx == nil {
		return nil
	}
	i, ok := idx.byKey[record.Key()]
	if !ok {
		return nil
	}
	match := idx.set[i]
	return &match
}

// Len is the number of distinct identities indexed.
func (idx *CompanionIndex) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.byKey)
}

// OverlayPair holds a primary record and its companion, if one matched.
type OverlayPair struct {
	Primary   MeasureRecord  `json:"primary"`
	Companion *MeasureRecord `json:"companion"`
}

// PairRecords matches every primary record against the companion set.
func PairRecords(primary, companion []MeasureRecord) []OverlayPair {
	idx := NewCompanionIndex(companion)
	pairs := make([]OverlayPair, len(primary))
	for i := range primary {
		pairs[i] = OverlayPair{Primary: primary[i], Companion: idx.Lookup(primary[i])}
	}
	return pairs
}
