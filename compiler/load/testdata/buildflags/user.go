package buildflags

//entitysql:generate User "Users"
type UserQueries struct{}

// User is always visible.
type User struct {
	Id   int
	Name string
}
