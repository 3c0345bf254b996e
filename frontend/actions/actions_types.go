package actions

// Control actions accepted by POST /{action}.
const (
	ActionStart   = "start"
	ActionStop    = "stop"
	ActionRestart = "restart"
)

// IsKnownAction reports whether name is a control action the bot understands.
func IsKnownAction(name string) bool {
	switch name {
	case ActionStart, ActionStop, ActionRestart:
		return true
	default:
		return false
	}
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	Status    string `json:"status"`
	UpdatedAt string `json:"updatedAt"`
	Label     string `json:"label"`
}

// UnknownStatus is reported before the bot has written any status.
const UnknownStatus = "unknown"
