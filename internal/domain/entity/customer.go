package entity

// CustomerRecord are the seven raw business attributes the model was trained
// on. Values are validated at the transport boundary; the domain services
// still reject numeric values that slipped through out of range.
type CustomerRecord struct {
	Contract         string  `json:"contract"`
	Tenure           int     `json:"tenure"` // months
	MonthlyCharges   float64 `json:"monthly_charges"`
	TotalCharges     float64 `json:"total_charges"`
	PaymentMethod    string  `json:"payment_method"`
	InternetService  string  `json:"internet_service"`
	PaperlessBilling bool    `json:"paperless_billing"`
}
