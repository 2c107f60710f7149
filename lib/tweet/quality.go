package tweet

// Quality tags which retrieval pass a tweet was extracted from. Uncensored
// timeline passes yield high quality, show-more passes low quality and the
// final offensive-content pass abusive quality.
type Quality string

const (
	QualityHigh    Quality = "high_quality"
	QualityLow     Quality = "low_quality"
	QualityAbusive Quality = "abusive_quality"
	QualityUnknown Quality = "unknown_quality"
)
