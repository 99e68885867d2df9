package salary

// Input amounts are BRL units. The engine assumes non-negative values; see Validate and Clamp.
type Input struct {
	GrossSalary    float64 `json:"grossSalary" validate:"gte=0"`
	Dependents     int     `json:"dependents" validate:"gte=0"`
	OtherDiscounts float64 `json:"otherDiscounts" validate:"gte=0"`
	Benefits       float64 `json:"benefits" validate:"gte=0"`
	Alimony        float64 `json:"alimony" validate:"gte=0"`
}

type Result struct {
	INSS                    float64 `json:"inss"`
	BaseTraditional         float64 `json:"baseTraditional"`
	BaseSimplified          float64 `json:"baseSimplified"`
	IRRFTraditional         float64 `json:"irrfTraditional"`
	IRRFSimplified          float64 `json:"irrfSimplified"`
	NetTraditional          float64 `json:"netTraditional"`
	NetSimplified           float64 `json:"netSimplified"`
	IRRFOptionalTraditional bool    `json:"irrfOptionalTraditional"`
	IRRFOptionalSimplified  bool    `json:"irrfOptionalSimplified"`
	Regime                  Regime  `json:"regime"`
}

type Regime string

const (
	RegimeTraditional Regime = "traditional"
	RegimeSimplified  Regime = "simplified"
)
