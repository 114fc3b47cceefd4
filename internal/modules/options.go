package modules

import "github.com/mesh-intelligence/boardroom/pkg/types"

// Option list keys.
const (
	OptMediaTypes         = "mediaTypes"
	OptActivityTypes      = "activityTypes"
	OptActivityStatus     = "activityStatus"
	OptThemes             = "themes"
	OptSentiments         = "sentiments"
	OptAudiences          = "audiences"
	OptChannels           = "channels"
	OptPaymentStatus      = "paymentStatus"
	OptDonationTypes      = "donationTypes"
	OptServiceTypes       = "serviceTypes"
	OptProjectStatus      = "projectStatus"
	OptOperationalCosts   = "operationalCategories"
	OptPersonnelTypes     = "personnelTypes"
	OptEventCategories    = "eventCategories"
	OptIncomeCategories   = "incomeCategories"
	OptMeetingTypes       = "meetingTypes"
	OptDocumentTypes      = "documentTypes"
	OptDocumentStatus     = "documentStatus"
	OptFinanceSources     = "financeSources"
	OptStakeholderSectors = "stakeholderSectors"
)

// options holds every fixed enumeration. Codes are stored raw in records
// and translated through the option.<code> labels.
var options = types.Options{
	OptMediaTypes:         {"Print", "Online", "TV", "Radio", "Social"},
	OptActivityTypes:      {"Meeting", "Workshop", "Forum", "Visit", "Campaign"},
	OptActivityStatus:     {"Planned", "Done", "Cancelled"},
	OptThemes:             {"Trade", "Health", "Environment", "Labor", "Tax"},
	OptSentiments:         {"Positive", "Neutral", "Negative"},
	OptAudiences:          {"Members", "Government", "Media", "Public"},
	OptChannels:           {"Email", "WhatsApp", "Press", "SocialMedia"},
	OptPaymentStatus:      {"Paid", "Pending", "Overdue"},
	OptDonationTypes:      {"Cash", "InKind"},
	OptServiceTypes:       {"Training", "Consulting", "Certification"},
	OptProjectStatus:      {"Proposed", "Active", "Closed"},
	OptOperationalCosts:   {"Rent", "Utilities", "Supplies", "Travel", "Other"},
	OptPersonnelTypes:     {"Salary", "Contractor", "Benefits"},
	OptEventCategories:    {"Venue", "Catering", "Logistics", "Materials"},
	OptIncomeCategories:   {"Sponsorship", "Grants", "Other"},
	OptMeetingTypes:       {"Board", "Assembly", "Committee"},
	OptDocumentTypes:      {"Statute", "Minutes", "Contract", "Permit"},
	OptDocumentStatus:     {"Valid", "Expired", "Pending"},
	OptFinanceSources:     FinancePaths,
	OptStakeholderSectors: {"Government", "Media", "Academia", "Private", "Civil"},
}

// Options returns the option lists named by keys.
func Options(keys ...string) types.Options {
	out := make(types.Options, len(keys))
	for _, k := range keys {
		out[k] = options[k]
	}
	return out
}
