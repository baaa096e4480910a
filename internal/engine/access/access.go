// Copyright 2025 Keel Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package access is the single source of truth for team privilege rules.
// Every mutating team operation must consult these predicates; the rules
// are never duplicated inline.
package access

// Role is a team membership role. Roles are totally ordered by privilege:
// owner > admin > member > viewer.
type Role string

const (
	RoleOwner  Role = "owner"  // full control, billing, delete team, transfer ownership
	RoleAdmin  Role = "admin"  // manage team, invite members
	RoleMember Role = "member" // create/edit, view data
	RoleViewer Role = "viewer" // read-only access
)

var rank = map[Role]int{
	RoleOwner:  4,
	RoleAdmin:  3,
	RoleMember: 2,
	RoleViewer: 1,
}

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	_, ok := rank[r]
	return ok
}

// AtLeast reports whether r carries at least the privilege of other.
func (r Role) AtLeast(other Role) bool {
	return rank[r] >= rank[other]
}

// CanManage reports whether a requester with role requester may act on a
// member holding role target.
//
// Rules:
//   - owner manages anyone
//   - admin manages only members and viewers (never owners or other admins)
//   - member/viewer manage nobody
func CanManage(requester, target Role) bool {
	switch requester {
	case RoleOwner:
		return true
	case RoleAdmin:
		return target == RoleMember || target == RoleViewer
	default:
		return false
	}
}

// CanInvite reports whether a requester with role requester may send an
// invitation assigning role assign.
//
// Rules:
//   - owner may assign any role
//   - admin may assign only member or viewer
//   - member/viewer may assign nothing
func CanInvite(requester, assign Role) bool {
	if !assign.Valid() {
		return false
	}
	switch requester {
	case RoleOwner:
		return true
	case RoleAdmin:
		return assign == RoleMember || assign == RoleViewer
	default:
		return false
	}
}
