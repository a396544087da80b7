package kernel

import "strings"

// ActorType classifies who performed a mutation.
type ActorType string

const (
	ActorTypeUser   ActorType = "user"
	ActorTypeAPI    ActorType = "api"
	ActorTypeSystem ActorType = "system"
)

// SystemActorID is recorded when no caller can be resolved.
const SystemActorID = "system"

// Actor is the caller a mutation and its audit entry are attributed to.
type Actor struct {
	Type ActorType
	ID   string
}

// SystemActor returns the fallback actor for automated flows.
func SystemActor() Actor {
	return Actor{Type: ActorTypeSystem, ID: SystemActorID}
}

// Caller describes the identities known for the current request. Values are
// passed explicitly from the transport layer; nothing is looked up ambiently.
type Caller struct {
	SessionUserID string
	IdentityKeyID string
}

// ResolveActor picks the actor for a mutation.
//
// An explicit id wins (with explicitType, or the type implied by the caller
// when empty). Otherwise the session user is used, then the authenticated API
// identity, then the system actor.
func ResolveActor(explicitType ActorType, explicitID string, caller Caller) Actor {
	explicitID = strings.TrimSpace(explicitID)
	sessionUser := strings.TrimSpace(caller.SessionUserID)
	keyID := strings.TrimSpace(caller.IdentityKeyID)

	if explicitID != "" {
		if explicitType == "" {
			explicitType = inferType(sessionUser, keyID)
		}
		return Actor{Type: explicitType, ID: explicitID}
	}
	if sessionUser != "" {
		return Actor{Type: ActorTypeUser, ID: sessionUser}
	}
	if keyID != "" {
		return Actor{Type: ActorTypeAPI, ID: keyID}
	}
	return SystemActor()
}

func inferType(sessionUser, keyID string) ActorType {
	switch {
	case sessionUser != "":
		return ActorTypeUser
	case keyID != "":
		return ActorTypeAPI
	default:
		return ActorTypeSystem
	}
}

// IsValid reports whether the actor has a known type and a non-empty id.
func (a Actor) IsValid() bool {
	switch a.Type {
	case ActorTypeUser, ActorTypeAPI, ActorTypeSystem:
		return strings.TrimSpace(a.ID) != ""
	default:
		return false
	}
}
