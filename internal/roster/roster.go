// Package roster maps between the three names a tracked person goes by: the
// platform-native member ID, the human display name used in commands, and the
// ledger username attendance records are keyed by. The table is immutable and
// injected at startup so deployments and tests supply their own fixtures.
package roster

import (
	"regexp"
	"strings"

	"rollcall/pkg/domain"
	dErrors "rollcall/pkg/domain-errors"
)

// Entry is one tracked person.
type Entry struct {
	DisplayName string
	ID          domain.MemberID
	Username    domain.Username
}

// Roster is the immutable lookup table. Zero value is an empty roster that
// tracks nobody.
type Roster struct {
	byName map[string]domain.MemberID
	byID   map[domain.MemberID]domain.Username
}

// mentionRE matches platform mention syntax <@id> and <@!id>.
var mentionRE = regexp.MustCompile(`^<@!?(\d+)>$`)

// New builds a roster from entries. Duplicate display names or member IDs are
// a configuration mistake and rejected outright.
func New(entries []Entry) (*Roster, error) {
	r := &Roster{
		byName: make(map[string]domain.MemberID, len(entries)),
		byID:   make(map[domain.MemberID]domain.Username, len(entries)),
	}
	for _, e := range entries {
		if e.DisplayName == "" || e.ID.IsZero() || e.Username == "" {
			return nil, dErrors.Newf(dErrors.CodeInvalidInput, "incomplete roster entry %+v", e)
		}
		if _, ok := r.byName[e.DisplayName]; ok {
			return nil, dErrors.Newf(dErrors.CodeInvalidInput, "duplicate display name %q", e.DisplayName)
		}
		if _, ok := r.byID[e.ID]; ok {
			return nil, dErrors.Newf(dErrors.CodeInvalidInput, "duplicate member id %q", e.ID)
		}
		r.byName[e.DisplayName] = e.ID
		r.byID[e.ID] = e.Username
	}
	return r, nil
}

// Resolve turns a raw command token into the canonical member ID. Accepted
// forms, tried in order: platform mention (<@id>, <@!id>), "@displayName",
// and a bare display name.
//
// Errors: CodeNotFound when the token names nobody on the roster; resolution
// failures are reportable, never a silent no-op.
func (r *Roster) Resolve(token string) (domain.MemberID, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "identity token cannot be empty")
	}

	if m := mentionRE.FindStringSubmatch(token); m != nil {
		id := domain.MemberID(m[1])
		if _, ok := r.byID[id]; !ok {
			return "", dErrors.Newf(dErrors.CodeNotFound, "member %s is not on the roster", id)
		}
		return id, nil
	}

	name := strings.TrimPrefix(token, "@")
	if id, ok := r.byName[name]; ok {
		return id, nil
	}
	return "", dErrors.Newf(dErrors.CodeNotFound, "no roster entry for %q", name)
}

// Username returns the ledger username for a member ID.
//
// Errors: CodeNotFound for members outside the roster.
func (r *Roster) Username(id domain.MemberID) (domain.Username, error) {
	if u, ok := r.byID[id]; ok {
		return u, nil
	}
	return "", dErrors.Newf(dErrors.CodeNotFound, "member %s is not on the roster", id)
}

// Tracked reports whether the member is on the roster.
func (r *Roster) Tracked(id domain.MemberID) bool {
	_, ok := r.byID[id]
	return ok
}

// Size returns the number of tracked members, for the startup summary log.
func (r *Roster) Size() int {
	return len(r.byID)
}
