package service

// Profile represents user information that can be shared with other domains.
type Profile struct {
	ID        int64
	Username  string
	Email     string
	FirstName string
	LastName  string
	Status    string
	IsAdmin   bool
}

// DisplayName is the full name, or the username when no name is set.
func (p Profile) DisplayName() string {
	name := p.FirstName
	if p.LastName != "" {
		if name != "" {
			name += " "
		}
		name += p.LastName
	}
	if name == "" {
		return p.Username
	}
	return name
}
