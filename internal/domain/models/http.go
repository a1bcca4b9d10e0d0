package models

// PredictRequest is the /api/predict query.
type PredictRequest struct {
	Symbol string `query:"symbol" validate:"required,min=2,max=20"`
	Hours  int    `query:"hours" default:"24" validate:"omitempty,min=1,max=168"`
}

// SymbolRequest is the query for single-symbol endpoints.
type SymbolRequest struct {
	Symbol string `query:"symbol" validate:"required,min=2,max=20"`
}

// TrainRequest is the /api/train query.
type TrainRequest struct {
	Symbol string `query:"symbol" validate:"required,min=2,max=20"`
	Force  bool   `query:"force"`
}

// NewsRequest is the /api/news query.
type NewsRequest struct {
	Limit int `query:"limit" default:"5" validate:"omitempty,min=1,max=20"`
}
