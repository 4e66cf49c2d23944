package cows

// Status define los estados soportados de un animal.
// @Enum wet, dry, bred, bull, steer, cull
type Status string

const (
	StatusWet   Status = "wet"
	StatusDry   Status = "dry"
	StatusBred  Status = "bred"
	StatusBull  Status = "bull"
	StatusSteer Status = "steer"
	StatusCull  Status = "cull"
)

func (s Status) Valid() bool {
	switch s {
	case StatusWet, StatusDry, StatusBred, StatusBull, StatusSteer, StatusCull:
		return true
	}
	return false
}

// TagLabel es el tipo físico de identificador.
// @Enum ear tag, RFID, brand, other
type TagLabel string

const (
	LabelEarTag TagLabel = "ear tag"
	LabelRFID   TagLabel = "RFID"
	LabelBrand  TagLabel = "brand"
	LabelOther  TagLabel = "other"
)

func (l TagLabel) Valid() bool {
	switch l {
	case LabelEarTag, LabelRFID, LabelBrand, LabelOther:
		return true
	}
	return false
}

// SortKey para ordenar el listado del ganado.
type SortKey string

const (
	SortNewest       SortKey = "newest"
	SortOldest       SortKey = "oldest"
	SortLastUpdated  SortKey = "lastUpdated"
	SortLeastUpdated SortKey = "leastUpdated"
)

func (k SortKey) Valid() bool {
	switch k {
	case SortNewest, SortOldest, SortLastUpdated, SortLeastUpdated:
		return true
	}
	return false
}
