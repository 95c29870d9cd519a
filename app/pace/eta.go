package pace

// DefaultNominalPages is the assumed length of a book when estimating time
// to finish.
const DefaultNominalPages = 350

const (
	minETADays = 0.5
	maxETADays = 14
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
)

func (c Confidence) Emoji() string {
	if c == ConfidenceHigh {
		return "🟢"
	}
	return "🟡"
}

type ETA struct {
	Label      string
	Days       float64
	Confidence Confidence
}

// EstimateETA projects days to finish the current book. Without a known
// percent the book is assumed half read and confidence drops to medium.
func EstimateETA(v Velocity, nominalPages int, percent int, known bool) ETA {
	if nominalPages <= 0 {
		nominalPages = DefaultNominalPages
	}
	pages := float64(nominalPages)

	remaining := pages * 0.5
	confidence := ConfidenceMedium
	if known {
		remaining = pages * (1 - float64(percent)/100)
		confidence = ConfidenceHigh
	}

	booksPerDay := max(v.BooksPerDay, MinVelocity)
	days := clamp(remaining/(pages*booksPerDay), minETADays, maxETADays)

	return ETA{
		Label:      bucket(days),
		Days:       days,
		Confidence: confidence,
	}
}

func bucket(days float64) string {
	switch {
	case days < 1:
		return "today / tomorrow"
	case days < 2:
		return "1–2 days"
	case days < 4:
		return "2–4 days"
	case days < 7:
		return "within a week"
	default:
		return "1–2 weeks"
	}
}
