package security

// Identity is the rate limit subject: an authenticated user id, or the
// client IP for anonymous traffic. The authentication layer builds it once
// per request; nothing in this package inspects request objects.
type Identity struct {
	userID string
	ip     string
}

func UserIdentity(userID, ip string) Identity {
	return Identity{userID: userID, ip: ip}
}

func AnonymousIdentity(ip string) Identity {
	return Identity{ip: ip}
}

func (i Identity) Anonymous() bool {
	return i.userID == ""
}

func (i Identity) UserID() string {
	return i.userID
}

func (i Identity) IP() string {
	return i.ip
}

// Key returns the identifier state is tracked under. Two anonymous requests
// from the same IP share one key; an authenticated user's key is independent
// of their IP.
func (i Identity) Key() string {
	if i.userID != "" {
		return "user:" + i.userID
	}
	return "ip:" + i.ip
}
