package models

// Requests for engine HTTP endpoints. Defined in domain for consistency and reuse.

type SeriesRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	From   string `query:"from" json:"from"`
	To     string `query:"to" json:"to"`
	Days   int    `query:"days" json:"days" default:"30" validate:"gte=1,lte=3650"`
}

type SummaryRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
}

type CompareRequest struct {
	Symbol1 string `query:"symbol1" json:"symbol1" validate:"required"`
	Symbol2 string `query:"symbol2" json:"symbol2" validate:"required,nefield=Symbol1"`
	Days    int    `query:"days" json:"days" default:"30" validate:"gte=1,lte=365"`
}

type InsightsRequest struct {
	Limit int `query:"limit" json:"limit" default:"5" validate:"gte=1,lte=50"`
}

type PredictRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
}

type RefreshRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
}
