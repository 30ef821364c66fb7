package domain

// ActorKind identifies which population an authenticated caller
// belongs to. The zero value is an anonymous caller.
type ActorKind string

const (
	ActorAnonymous ActorKind = ""
	ActorAdmin     ActorKind = "users"
	ActorVendor    ActorKind = "vendors"
)

// Actor is the authenticated identity behind a request.
type Actor struct {
	ID   string
	Kind ActorKind
}

// Action names an operation subject to authorization.
type Action string

const (
	ActionReviewVendor     Action = "vendor.review"
	ActionReadVendor       Action = "vendor.read"
	ActionUpdateVendor     Action = "vendor.update"
	ActionManageCategories Action = "categories.manage"
)

// Decide evaluates whether actor may perform action against the vendor
// record identified by vendorID (empty for collection-level actions).
// All authorization questions funnel through here so the rules live in
// one place instead of per-handler checks.
func Decide(actor Actor, action Action, vendorID string) bool {
	switch action {
	case ActionReviewVendor, ActionManageCategories:
		return actor.Kind == ActorAdmin
	case ActionReadVendor, ActionUpdateVendor:
		if actor.Kind == ActorAdmin {
			return true
		}
		return actor.Kind == ActorVendor && actor.ID != "" && actor.ID == vendorID
	default:
		return false
	}
}
