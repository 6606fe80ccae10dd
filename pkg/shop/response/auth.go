package response

type Auth struct {
	Access  string `json:"access,omitempty"`
	Refresh string `json:"refresh,omitempty"`
	// some deployments return the token under this key instead
	Token string `json:"token,omitempty"`
}

// AccessToken returns whichever token field the backend filled in.
func (a *Auth) AccessToken() string {
	if a.Access != "" {
		return a.Access
	}
	return a.Token
}

func (a *Auth) IsValid() bool {
	return a.AccessToken() != ""
}

type Profile struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}
