package interview

type ToneLabel string

const (
	TonePositive ToneLabel = "positive"
	ToneNeutral  ToneLabel = "neutral"
	ToneNegative ToneLabel = "negative"
)

// ToneResult is the dominant sentiment of one answer. Index is the answer's
// position in the evaluated batch.
type ToneResult struct {
	Index      int       `json:"index"`
	Label      ToneLabel `json:"label"`
	Confidence float64   `json:"confidence"`
}
