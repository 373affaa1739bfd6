package permission

// Resource and action names used in policies and checks.
const (
	ResourceOrder     = "order"
	ResourceUser      = "user"
	ResourceSession   = "session"
	ResourceDashboard = "dashboard"

	ActionCreate  = "create"
	ActionRead    = "read"
	ActionReadAll = "read_all"
	ActionUpdate  = "update"
	ActionDelete  = "delete"
	ActionManage  = "manage"
)

// DefaultPolicies returns the role grants seeded into a fresh system
// database. Operators work their own order book; admins additionally
// manage accounts and sessions and see everyone's data.
func DefaultPolicies() [][]string {
	return [][]string{
		{"operator", ResourceOrder, ActionCreate},
		{"operator", ResourceOrder, ActionRead},
		{"operator", ResourceOrder, ActionUpdate},
		{"operator", ResourceOrder, ActionDelete},

		{"admin", ResourceOrder, ActionCreate},
		{"admin", ResourceOrder, ActionRead},
		{"admin", ResourceOrder, ActionReadAll},
		{"admin", ResourceOrder, ActionUpdate},
		{"admin", ResourceOrder, ActionDelete},
		{"admin", ResourceUser, ActionManage},
		{"admin", ResourceSession, ActionManage},
		{"admin", ResourceDashboard, ActionRead},
	}
}
