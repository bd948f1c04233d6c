package domain

// ResourceKind names the entity types access decisions are made on.
type ResourceKind string

const (
	ResourceOrganization ResourceKind = "organization"
	ResourceTeam         ResourceKind = "team"
	ResourceUser         ResourceKind = "user"
	ResourceObjective    ResourceKind = "objective"
	ResourceKeyResult    ResourceKind = "key_result"
	ResourceCheckIn      ResourceKind = "check_in"
	ResourceComment      ResourceKind = "comment"
	ResourceNotification ResourceKind = "notification"
)

// ResourceRef identifies a single record by kind and id.
type ResourceRef struct {
	Kind ResourceKind
	ID   string
}

// Ref is shorthand for building a ResourceRef.
func Ref(kind ResourceKind, id string) ResourceRef {
	return ResourceRef{Kind: kind, ID: id}
}

// Ownership is the resolved path from a record up to its organization, plus
// the identities the access rules look at.
type Ownership struct {
	Ref            ResourceRef
	OrganizationID string
	// TeamOrganizationID is the organization of TeamID when it was resolved
	// separately from OrganizationID (users carry both).
	TeamOrganizationID *string
	TeamID             *string
	// OwnerID is the creator, author, submitter, recipient or the user itself.
	OwnerID *string
	// AssigneeID and AssigneeTeamID describe the key result assignee for key
	// results, check-ins and comments.
	AssigneeID     *string
	AssigneeTeamID *string
}

// OwnedBy reports whether userID owns the record.
func (o Ownership) OwnedBy(userID string) bool {
	return o.OwnerID != nil && *o.OwnerID == userID
}

// AssignedTo reports whether userID is the key result assignee.
func (o Ownership) AssignedTo(userID string) bool {
	return o.AssigneeID != nil && *o.AssigneeID == userID
}
