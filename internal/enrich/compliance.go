package enrich

// ComplianceData lists safety and code requirements that commonly apply to
// single-family homes in a state. Built from public code summaries; a state
// with no entry gets the baseline set plus a manual-entry flag.
type ComplianceData struct {
	State        string   `json:"state"`
	Requirements []string `json:"requirements"`
	ManualEntry  bool     `json:"manual_entry"`
}

var baselineRequirements = []string{
	"Smoke alarms on every level and inside each sleeping area",
	"Carbon monoxide alarms near sleeping areas when fuel-burning appliances or an attached garage are present",
	"Water heater temperature and pressure relief valve with discharge pipe",
	"GFCI protection for bathroom, kitchen, garage, and exterior receptacles",
}

var stateRequirements = map[string][]string{
	"CA": {
		"Water heater seismic strapping (two straps, upper and lower third)",
		"Smoke alarms must be photoelectric or dual-sensor in new installations",
		"Defensible-space vegetation clearance in fire hazard severity zones",
		"Low-flow fixture retrofit on sale or major remodel",
	},
	"FL": {
		"Hurricane shutters or impact-rated glazing in wind-borne debris regions",
		"Roof-to-wall connection retrofit disclosure on sale",
		"Pool safety barrier with self-latching gate",
	},
	"TX": {
		"Pool enclosure fencing at least 48 inches with self-closing gate",
		"Smoke alarm battery replacement on tenant turnover for rentals",
	},
	"WA": {
		"Carbon monoxide alarms required in all homes regardless of fuel type",
		"Seismic gas shutoff valve recommended in high-hazard zones",
	},
	"NY": {
		"Carbon monoxide alarms within 15 feet of sleeping areas",
		"Operable window guards in multi-unit dwellings with young children",
	},
	"MA": {
		"Photoelectric smoke alarms within 20 feet of kitchens and bathrooms",
		"Smoke and CO alarm certificate required at time of sale",
	},
	"IL": {
		"Sealed-battery smoke alarms required when replacing units",
		"Carbon monoxide alarms within 15 feet of sleeping rooms",
	},
	"CO": {
		"Carbon monoxide alarms on each level with a sleeping area",
		"Wildfire-resistant roofing in designated wildland-urban interface areas",
	},
}

// ComplianceFor returns the requirement set for a normalized two-letter
// state. Unknown states get the baseline with ManualEntry set so the client
// prompts for local code research.
func ComplianceFor(state string) ComplianceData {
	extra, ok := stateRequirements[state]

	reqs := make([]string, 0, len(baselineRequirements)+len(extra))
	reqs = append(reqs, baselineRequirements...)
	reqs = append(reqs, extra...)

	return ComplianceData{
		State:        state,
		Requirements: reqs,
		ManualEntry:  !ok,
	}
}
