package synthetic

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"yidino-api/pkg/format"
	"yidino-api/pkg/market/solanarpc"
)

// Severity grades a risk factor.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Weight is the score contributed by one factor of the severity.
func (s Severity) Weight() int {
	switch s {
	case SeverityHigh:
		return 35
	case SeverityMedium:
		return 20
	case SeverityLow:
		return 5
	}
	return 0
}

// RiskLevel buckets a risk score.
type RiskLevel string

const (
	RiskVeryHigh RiskLevel = "very-high"
	RiskHigh     RiskLevel = "high"
	RiskMedium   RiskLevel = "medium"
	RiskLow      RiskLevel = "low"
)

// LevelFor maps a score to its level.
func LevelFor(score int) RiskLevel {
	switch {
	case score > 60:
		return RiskVeryHigh
	case score > 40:
		return RiskHigh
	case score > 20:
		return RiskMedium
	}
	return RiskLow
}

type RiskFactor struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Details     string   `json:"details"`
}

var riskCatalogue = map[Severity][]RiskFactor{
	SeverityHigh: {
		{"Mint Authority", "Token can mint unlimited new supply", SeverityHigh, "The contract has an active mint function that allows unlimited token creation"},
		{"Freeze Authority", "Wallet funds can be frozen", SeverityHigh, "The token creator can freeze any wallet, preventing transfers"},
	},
	SeverityMedium: {
		{"High Ownership Concentration", "Top 10 holders own >80% of supply", SeverityMedium, "80% of tokens held by 10 addresses - high rugpull risk"},
		{"Liquidity Pool Risk", "Liquidity pool is small", SeverityMedium, "LP value is only $10,000 - easy to manipulate price"},
	},
	SeverityLow: {
		{"Creator Verification", "Creator has no on-chain history", SeverityLow, "New wallet created recently - verify legitimacy"},
		{"Contract Age", "Contract deployed recently", SeverityLow, "Token deployed only 2 days ago - monitor for suspicious activity"},
	},
}

// A draw above the threshold reports only the first factor of a severity.
var singleFactorThreshold = map[Severity]float64{
	SeverityHigh:   0.5,
	SeverityMedium: 0.7,
	SeverityLow:    0.6,
}

type Risks struct {
	High   []RiskFactor `json:"high"`
	Medium []RiskFactor `json:"medium"`
	Low    []RiskFactor `json:"low"`
}

// Score sums the factor weights.
func (r Risks) Score() int {
	return len(r.High)*SeverityHigh.Weight() +
		len(r.Medium)*SeverityMedium.Weight() +
		len(r.Low)*SeverityLow.Weight()
}

// Count is the number of factors reported.
func (r Risks) Count() int {
	return len(r.High) + len(r.Medium) + len(r.Low)
}

type Checks struct {
	TransferFeeEnabled      bool `json:"transferFeeEnabled"`
	MintAuthorityDisabled   bool `json:"mintAuthorityDisabled"`
	FreezeAuthorityDisabled bool `json:"freezeAuthorityDisabled"`
	LPLocked                bool `json:"lpLocked"`
	LPBurned                bool `json:"lpBurned"`
	Renounced               bool `json:"renounced"`
	Verified                bool `json:"verified"`
}

type Liquidity struct {
	Total    int64  `json:"total"`
	Currency string `json:"currency"`
}

type Supply struct {
	Total    string `json:"total"`
	Decimals int    `json:"decimals"`
}

type PriceInfo struct {
	Price     float64 `json:"price"`
	MarketCap int64   `json:"marketCap"`
	Change24h float64 `json:"change24h"`
}

// ScanResult is a synthetic risk report for a token.
type ScanResult struct {
	Address         string    `json:"address"`
	Name            string    `json:"name"`
	Symbol          string    `json:"symbol"`
	ContractAddress string    `json:"contractAddress"`
	Deployer        string    `json:"deployer"`
	DeployedAt      time.Time `json:"deployedAt"`
	Holders         int       `json:"holders"`
	Liquidity       Liquidity `json:"liquidity"`
	Supply          Supply    `json:"supply"`
	PriceInfo       PriceInfo `json:"priceInfo"`
	Risks           Risks     `json:"risks"`
	RiskScore       int       `json:"riskScore"`
	RiskLevel       RiskLevel `json:"riskLevel"`
	TotalRisks      int       `json:"totalRisks"`
	Checks          Checks    `json:"checks"`
	Synthetic       bool      `json:"synthetic"`
}

// RugScanner assesses a token for rug-pull risk.
type RugScanner interface {
	Scan(ctx context.Context, address string) (*ScanResult, error)
}

// MockRugScanner draws a random report. It only validates the address.
type MockRugScanner struct {
	rng *lockedRand
	now func() time.Time
}

var _ RugScanner = (*MockRugScanner)(nil)

// NewMockRugScanner constructs a scanner; r and now may be nil.
func NewMockRugScanner(r *rand.Rand, now func() time.Time) *MockRugScanner {
	if now == nil {
		now = time.Now
	}
	return &MockRugScanner{rng: newLockedRand(r), now: now}
}

func pickFactors(r *rand.Rand, sev Severity) []RiskFactor {
	all := riskCatalogue[sev]
	n := len(all)
	if r.Float64() > singleFactorThreshold[sev] {
		n = 1
	}
	out := make([]RiskFactor, n)
	copy(out, all[:n])
	return out
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

func (s *MockRugScanner) Scan(ctx context.Context, address string) (*ScanResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := solanarpc.ValidateAddress(address); err != nil {
		return nil, fmt.Errorf("synthetic: scan: %w", err)
	}

	res := &ScanResult{
		Address:         address,
		Name:            "Sample Token",
		Symbol:          "SAMPLE",
		ContractAddress: address,
		Deployer:        format.ShortAddress(address),
		Synthetic:       true,
	}
	now := s.now()
	s.rng.with(func(r *rand.Rand) {
		res.Risks = Risks{
			High:   pickFactors(r, SeverityHigh),
			Medium: pickFactors(r, SeverityMedium),
			Low:    pickFactors(r, SeverityLow),
		}
		res.DeployedAt = now.Add(-time.Duration(r.Float64() * float64(30*24*time.Hour)))
		res.Holders = r.Intn(5000) + 100
		res.Liquidity = Liquidity{Total: r.Int63n(500000) + 10000, Currency: "SOL"}
		res.Supply = Supply{Total: fmt.Sprintf("%.0f", r.Float64()*1e9), Decimals: 6}
		res.PriceInfo = PriceInfo{
			Price:     round(r.Float64()*0.001+0.00001, 8),
			MarketCap: r.Int63n(50_000_000) + 100_000,
			Change24h: round(r.Float64()*200-100, 2),
		}
		res.Checks = Checks{
			TransferFeeEnabled:      r.Float64() > 0.5,
			MintAuthorityDisabled:   r.Float64() > 0.5,
			FreezeAuthorityDisabled: r.Float64() > 0.5,
			LPLocked:                r.Float64() > 0.4,
			LPBurned:                r.Float64() > 0.6,
			Renounced:               r.Float64() > 0.7,
			Verified:                r.Float64() > 0.8,
		}
	})
	res.RiskScore = res.Risks.Score()
	res.RiskLevel = LevelFor(res.RiskScore)
	res.TotalRisks = res.Risks.Count()
	return res, nil
}
