package value

// Feature names exactly as they were fitted at training time. The positions
// in this list are the positions the model expects; reordering silently
// corrupts every downstream probability.
const (
	FeatureRatioMonthlyChargesTenure = "Ratio_MonthlyCharges_tenure"
	FeatureContract                  = "Contract"
	FeatureTenure                    = "tenure"
	FeatureMonthlyCharges            = "MonthlyCharges"
	FeatureTenureSegment             = "tenure_segment_encoded"
	FeatureTotalCharges              = "TotalCharges"
	FeatureIsNewCustomer             = "is_new_customer"
	FeaturePaymentMethod             = "PaymentMethod"
	FeatureInternetService           = "InternetService"
	FeaturePaperlessBilling          = "PaperlessBilling"
	FeatureRatioTotalCharges         = "Ratio_TotalCharges_MonthlyCharges*tenure"
)

// FeatureCount is the width of the model input vector.
const FeatureCount = 11

// FeatureOrder returns the training-time feature order.
func FeatureOrder() []string {
	return []string{
		FeatureRatioMonthlyChargesTenure,
		FeatureContract,
		FeatureTenure,
		FeatureMonthlyCharges,
		FeatureTenureSegment,
		FeatureTotalCharges,
		FeatureIsNewCustomer,
		FeaturePaymentMethod,
		FeatureInternetService,
		FeaturePaperlessBilling,
		FeatureRatioTotalCharges,
	}
}

// FeatureVector is the fixed-order input of the classifier. Fields are named
// so no caller ever assembles a positional list ad hoc; Values is the single
// place where the order is spelled out.
type FeatureVector struct {
	RatioMonthlyChargesTenure float64
	Contract                  int
	Tenure                    int
	MonthlyCharges            float64
	TenureSegment             int
	TotalCharges              float64
	IsNewCustomer             int
	PaymentMethod             int
	InternetService           int
	PaperlessBilling          int
	RatioTotalCharges         float64
}

// Values serializes the vector in the exact training-time order.
func (v FeatureVector) Values() [FeatureCount]float64 {
	return [FeatureCount]float64{
		v.RatioMonthlyChargesTenure,
		float64(v.Contract),
		float64(v.Tenure),
		v.MonthlyCharges,
		float64(v.TenureSegment),
		v.TotalCharges,
		float64(v.IsNewCustomer),
		float64(v.PaymentMethod),
		float64(v.InternetService),
		float64(v.PaperlessBilling),
		v.RatioTotalCharges,
	}
}
