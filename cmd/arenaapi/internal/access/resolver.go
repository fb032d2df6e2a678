package access

// Resolve combines the local role flag and the profile role into the effective
// role. A present profile claim wins because it reflects durable intent; the
// flag is the fallback before a profile has loaded. With neither present the
// result is RoleParticipant.
//
// Resolve never fails: unrecognised strings were already classified as
// RoleParticipant when the claims were built.
func Resolve(flag, profile Claim) Role {
	if profile.Present() {
		return profile.Role()
	}
	if flag.Present() {
		return flag.Role()
	}
	return RoleParticipant
}
