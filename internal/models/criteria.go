package models

// EvaluationCriterion представляет модель критерия оценки предложений.
// Вес критерия одновременно является максимумом набираемых баллов,
// сумма весов активного набора для тендера должна быть ровно 100.
type EvaluationCriterion struct {
	ID          string `json:"id"`
	TenderId    string `json:"-"`
	Name        string `json:"name"`
	Weight      int    `json:"weight"`
	Description string `json:"description"`
}
