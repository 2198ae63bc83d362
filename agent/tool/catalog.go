package tool

import (
	"github.com/cloudwego/eino/schema"

	rosterx "github.com/wrenhealth/concierge/agent/roster"
)

// Tool names, as the model sees them.
const (
	PharmacyLocations       = "get_pharmacy_locations"
	CurrentTimeInfo         = "get_current_time_info"
	MedicationInsurance     = "check_medication_insurance"
	DrugInteractions        = "check_drug_interactions"
	InNetworkHospitals      = "find_in_network_hospitals"
	AppointmentAvailability = "get_appointment_availability"
)

// allowedTools maps each role to the tools it may invoke. Roles absent from
// the map have no tool access at all.
var allowedTools = map[string]map[string]struct{}{
	rosterx.RolePharmacy: {
		PharmacyLocations: {},
	},
	rosterx.RoleTime: {
		CurrentTimeInfo: {},
	},
	rosterx.RoleMedication: {
		MedicationInsurance: {},
		DrugInteractions:    {},
	},
	rosterx.RoleAppointment: {
		InNetworkHospitals:      {},
		AppointmentAvailability: {},
	},
}

// Allowed reports whether the role may invoke the named tool.
func Allowed(roleID, tool string) bool {
	set, ok := allowedTools[roleID]
	if !ok {
		return false
	}
	_, ok = set[tool]
	return ok
}

var toolInfos = map[string]*schema.ToolInfo{
	PharmacyLocations: {
		Name: PharmacyLocations,
		Desc: "Find nearby pharmacies with address, phone, distance, drive time and open/closed status.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"location": {
				Type:     schema.String,
				Desc:     "City name or 5-digit US zip code. Defaults to the patient's home city.",
				Required: false,
			},
			"count": {
				Type:     schema.Integer,
				Desc:     "Maximum number of pharmacies to return, default 5.",
				Required: false,
			},
		}),
	},
	CurrentTimeInfo: {
		Name: CurrentTimeInfo,
		Desc: "Get the current date and time in the patient's timezone, including weekday and business-day status.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
	},
	MedicationInsurance: {
		Name: MedicationInsurance,
		Desc: "Check whether a medication is covered by the patient's insurance and estimate the copay.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"medication": {
				Type:     schema.String,
				Desc:     "Brand or generic medication name.",
				Required: true,
			},
			"insurance": {
				Type:     schema.String,
				Desc:     "Insurance provider name. Defaults to the patient's insurance on file.",
				Required: false,
			},
		}),
	},
	DrugInteractions: {
		Name: DrugInteractions,
		Desc: "Check a medication for known drug-drug interactions.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"medication": {
				Type:     schema.String,
				Desc:     "Brand or generic medication name.",
				Required: true,
			},
		}),
	},
	InNetworkHospitals: {
		Name: InNetworkHospitals,
		Desc: "Find nearby hospitals and clinics with address, distance and drive time.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"location": {
				Type:     schema.String,
				Desc:     "City name or 5-digit US zip code. Defaults to the patient's home city.",
				Required: false,
			},
			"count": {
				Type:     schema.Integer,
				Desc:     "Maximum number of facilities to return, default 5.",
				Required: false,
			},
		}),
	},
	AppointmentAvailability: {
		Name: AppointmentAvailability,
		Desc: "List available appointment slots with doctors over the next two weeks.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"specialty": {
				Type:     schema.String,
				Desc:     "Requested specialty, e.g. primary care or dermatology.",
				Required: false,
			},
		}),
	},
}

// InfosForRole returns the tool schemas the role is allowed to bind.
func InfosForRole(roleID string) []*schema.ToolInfo {
	set, ok := allowedTools[roleID]
	if !ok {
		return nil
	}
	infos := make([]*schema.ToolInfo, 0, len(set))
	for _, name := range []string{
		PharmacyLocations,
		CurrentTimeInfo,
		MedicationInsurance,
		DrugInteractions,
		InNetworkHospitals,
		AppointmentAvailability,
	} {
		if _, ok := set[name]; ok {
			infos = append(infos, toolInfos[name])
		}
	}
	return infos
}
