package featureflags

// Policy hooks consulted by the contact and messaging services.
const (
	// ContactAdminOverride lets administrators respond to contact requests on
	// the talent's behalf.
	ContactAdminOverride = "contact_admin_override"
	// ContactGrantMessaging treats an approved contact request as a messaging
	// grant between the two parties.
	ContactGrantMessaging = "contact_grant_messaging"
)

// Hook is a policy switch the services know how to honour.
type Hook struct {
	Name        string `json:"name"`
	Default     string `json:"default"`
	Description string `json:"description"`
}

// Hooks lists every policy switch with the value it takes when FEATURE_FLAGS
// does not mention it.
var Hooks = []Hook{
	{
		Name:        ContactGrantMessaging,
		Default:     "on",
		Description: "An approved contact request lets the requester message the talent without a premium subscription",
	},
	{
		Name:        ContactAdminOverride,
		Default:     "off",
		Description: "Administrators may approve or decline contact requests for the talent",
	},
}

func isHook(name string) bool {
	for _, h := range Hooks {
		if h.Name == name {
			return true
		}
	}
	return false
}
