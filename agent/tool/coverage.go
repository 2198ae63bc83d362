package tool

import (
	"strings"

	"github.com/wrenhealth/concierge/pkg/healthapi"
)

// Coverage is the insurance verdict for one medication.
type Coverage struct {
	Medication  string `json:"medication"`
	Insurance   string `json:"insurance"`
	ProductType string `json:"product_type,omitempty"`
	DrugClass   string `json:"drug_class,omitempty"`
	Covered     string `json:"covered"`
	Copay       string `json:"estimated_copay"`
}

// defaultMajorInsurers are the provider substrings treated as major national
// plans. The list is configurable through the gateway config.
var defaultMajorInsurers = []string{
	"united", "blue cross", "aetna", "cigna",
	"humana", "kaiser", "medicare", "medicaid",
}

// ClassifyCoverage applies the coverage heuristic: a failed lookup is always
// unknown, products not marked as prescription count as OTC and are paid out
// of pocket, prescription drugs under a recognized major insurer are covered
// with a plan-dependent copay, and anything else is unknown.
func ClassifyCoverage(label *healthapi.DrugLabel, insurance string, majorInsurers []string) Coverage {
	if len(majorInsurers) == 0 {
		majorInsurers = defaultMajorInsurers
	}

	cov := Coverage{Insurance: insurance}
	if label == nil {
		cov.Covered = "Unknown"
		cov.Copay = "Contact provider"
		return cov
	}

	cov.Medication = label.Medication
	cov.ProductType = label.ProductType
	cov.DrugClass = label.DrugClass

	isRx := strings.Contains(label.ProductType, "prescription")
	if strings.Contains(label.ProductType, "otc") || !isRx {
		cov.Covered = "OTC - Generally not covered"
		cov.Copay = "$0-$15 (out of pocket)"
		return cov
	}

	lowered := strings.ToLower(insurance)
	for _, insurer := range majorInsurers {
		if strings.Contains(lowered, insurer) {
			cov.Covered = "Yes"
			cov.Copay = "$10-$50 (varies by plan tier)"
			return cov
		}
	}

	cov.Covered = "Unknown"
	cov.Copay = "Contact provider"
	return cov
}
