// Package access computes the effective access level for a
// (principal, presentation) pair across the three overlapping
// mechanisms: ownership, public visibility, and explicit grants.
package access

import (
	"slate/internal/domain/models"
)

// Decision is the outcome of a resolution: whether the required level
// was granted, and which mechanism matched.
type Decision struct {
	Granted      bool
	MatchedLevel models.MatchedLevel
}

// Resolve decides whether principalID holds required access to p, given
// the principal's explicit grant (nil when none exists). Pure function:
// no side effects, deterministic for a given input, safe to call
// repeatedly. Callers must pass a freshly loaded presentation and grant
// on every check so revokes and visibility changes take effect for the
// very next request.
//
// Decision order, first match wins:
//  1. Owner: always granted, any level.
//  2. Public visibility: resolves to read. This intentionally
//     short-circuits before the explicit grant, so a write-grantee on a
//     public presentation resolves to read here (matches the behavior
//     the product has always had).
//  3. Explicit grant: granted iff the grant level satisfies the
//     required one (write satisfies read).
//  4. No match.
func Resolve(p *models.Presentation, principalID string, required models.AccessLevel, grant *models.ShareGrant) Decision {
	if principalID == p.OwnerID {
		return Decision{Granted: true, MatchedLevel: models.MatchedOwner}
	}

	if p.IsPublic {
		return Decision{
			Granted:      required == models.AccessRead,
			MatchedLevel: models.MatchedRead,
		}
	}

	if grant != nil {
		matched := models.MatchedRead
		if grant.AccessLevel == models.AccessWrite {
			matched = models.MatchedWrite
		}
		return Decision{
			Granted:      grant.AccessLevel.Satisfies(required),
			MatchedLevel: matched,
		}
	}

	return Decision{Granted: false, MatchedLevel: models.MatchedNone}
}
