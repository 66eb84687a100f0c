package entity

type User struct {
	ID        string
	Username  string
	Email     string
	Address   string
	BirthDate string
}

type Credentials struct {
	Email    string
	Password string
}

type Registration struct {
	Username  string
	Email     string
	Password  string
	Address   string
	BirthDate string
}

// Session is the result of a successful login. User is optional: some
// deployments return only the bare token and the profile is fetched
// separately.
type Session struct {
	Token string
	User  *User
}
