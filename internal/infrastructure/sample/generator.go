package sample

import (
	"fmt"
	"math/rand"
	"sync"

	"churnguard/internal/domain"
	"churnguard/internal/domain/entity"
	"churnguard/pkg/errcodes"
)

// Profile selects which kind of demo customer the generator produces.
type Profile string

const (
	ProfileRandom   Profile = "random"
	ProfileHighRisk Profile = "high_risk"
	ProfileStable   Profile = "stable"
	ProfileNew      Profile = "new"
	ProfilePremium  Profile = "premium"
)

//nolint:gochecknoglobals
var profileDescriptions = map[Profile]string{
	ProfileRandom:   "Fully random profile with a realistic distribution",
	ProfileHighRisk: "High churn risk profile (new customer, month-to-month, high bill)",
	ProfileStable:   "Loyal customer profile (long contract, high tenure, automatic payment)",
	ProfileNew:      "New customer (0-3 months of tenure)",
	ProfilePremium:  "Premium customer (high-end services, high bills)",
}

//nolint:gochecknoglobals
var (
	allContracts = []string{"Month-to-month", "One year", "Two year"}
	allPayments  = []string{
		"Bank transfer (automatic)",
		"Credit card (automatic)",
		"Electronic check",
		"Mailed check",
	}
	allInternet      = []string{"DSL", "Fiber optic", "No"}
	automaticPayment = []string{"Bank transfer (automatic)", "Credit card (automatic)"}
	longContracts    = []string{"One year", "Two year"}
)

// Generator produces plausible demo customers for each profile. Seeded
// explicitly so demos stay reproducible. The mutex serializes draws; a
// rand.Rand is not safe for concurrent use and the generator is shared by
// all request handlers.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))} //nolint:gosec
}

// Profiles returns the supported profile types in a stable order.
func Profiles() []Profile {
	return []Profile{ProfileRandom, ProfileHighRisk, ProfileStable, ProfileNew, ProfilePremium}
}

// Describe returns a human readable description of the profile.
func Describe(profile Profile) (string, error) {
	description, ok := profileDescriptions[profile]
	if !ok {
		return "", unknownProfile(profile)
	}
	return description, nil
}

// Generate returns one demo customer of the given profile together with a
// synthetic client id carrying the profile name.
func (g *Generator) Generate(profile Profile) (entity.CustomerRecord, string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var record entity.CustomerRecord

	switch profile {
	case ProfileRandom:
		record = g.random()
	case ProfileHighRisk:
		record = g.highRisk()
	case ProfileStable:
		record = g.stable()
	case ProfileNew:
		record = g.newCustomer()
	case ProfilePremium:
		record = g.premium()
	default:
		return entity.CustomerRecord{}, "", unknownProfile(profile)
	}

	clientID := fmt.Sprintf("%s_%05d", profile, 10000+g.rng.Intn(90000))

	return record, clientID, nil
}

// GenerateMany returns count demo customers of the same profile.
func (g *Generator) GenerateMany(profile Profile, count int) ([]entity.CustomerRecord, error) {
	if _, err := Describe(profile); err != nil {
		return nil, err
	}

	records := make([]entity.CustomerRecord, 0, count)
	for i := 0; i < count; i++ {
		record, _, err := g.Generate(profile)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}

func (g *Generator) random() entity.CustomerRecord {
	contract := pick(g.rng, allContracts)
	tenure := g.rng.Intn(73)

	var monthly float64
	switch contract {
	case "Month-to-month":
		monthly = g.uniform(65, 100)
	case "One year":
		monthly = g.uniform(50, 80)
	default:
		monthly = g.uniform(40, 70)
	}
	monthly = round2(monthly)

	return entity.CustomerRecord{
		Contract:         contract,
		Tenure:           tenure,
		MonthlyCharges:   monthly,
		TotalCharges:     g.totalCharges(monthly, tenure, 0.85, 1.15),
		PaymentMethod:    pick(g.rng, allPayments),
		InternetService:  pick(g.rng, allInternet),
		PaperlessBilling: g.rng.Float64() < 0.6,
	}
}

func (g *Generator) highRisk() entity.CustomerRecord {
	tenure := g.rng.Intn(13)
	monthly := round2(g.uniform(75, 118))

	return entity.CustomerRecord{
		Contract:         "Month-to-month",
		Tenure:           tenure,
		MonthlyCharges:   monthly,
		TotalCharges:     g.totalCharges(monthly, tenure, 0.90, 1.10),
		PaymentMethod:    pick(g.rng, []string{"Electronic check", "Mailed check"}),
		InternetService:  pick(g.rng, []string{"Fiber optic", "DSL"}),
		PaperlessBilling: true,
	}
}

func (g *Generator) stable() entity.CustomerRecord {
	tenure := 24 + g.rng.Intn(49)
	monthly := round2(g.uniform(45, 75))

	return entity.CustomerRecord{
		Contract:         pick(g.rng, longContracts),
		Tenure:           tenure,
		MonthlyCharges:   monthly,
		TotalCharges:     g.totalCharges(monthly, tenure, 0.95, 1.05),
		PaymentMethod:    pick(g.rng, automaticPayment),
		InternetService:  pick(g.rng, []string{"DSL", "Fiber optic"}),
		PaperlessBilling: g.rng.Float64() < 0.5,
	}
}

func (g *Generator) newCustomer() entity.CustomerRecord {
	tenure := g.rng.Intn(4)
	monthly := round2(g.uniform(50, 90))

	total := 0.0
	if tenure > 0 {
		total = round2(monthly * float64(tenure))
	}

	return entity.CustomerRecord{
		Contract:         pick(g.rng, allContracts),
		Tenure:           tenure,
		MonthlyCharges:   monthly,
		TotalCharges:     total,
		PaymentMethod:    pick(g.rng, allPayments),
		InternetService:  pick(g.rng, allInternet),
		PaperlessBilling: g.rng.Float64() < 0.6,
	}
}

func (g *Generator) premium() entity.CustomerRecord {
	tenure := 12 + g.rng.Intn(49)
	monthly := round2(g.uniform(85, 118))

	return entity.CustomerRecord{
		Contract:         pick(g.rng, longContracts),
		Tenure:           tenure,
		MonthlyCharges:   monthly,
		TotalCharges:     g.totalCharges(monthly, tenure, 0.98, 1.02),
		PaymentMethod:    pick(g.rng, automaticPayment),
		InternetService:  "Fiber optic",
		PaperlessBilling: true,
	}
}

// totalCharges varies around monthly*tenure; a zero-tenure customer has not
// been billed yet.
func (g *Generator) totalCharges(monthly float64, tenure int, lo, hi float64) float64 {
	if tenure == 0 {
		return 0
	}
	return round2(monthly * float64(tenure) * g.uniform(lo, hi))
}

func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}

func pick(rng *rand.Rand, values []string) string {
	return values[rng.Intn(len(values))]
}

func unknownProfile(profile Profile) error {
	return domain.NewError(errcodes.UnknownProfileType,
		fmt.Sprintf("unknown profile type %q, available: %v", profile, Profiles()))
}
