package generated

//entitysql:generate User "Users"
type UserStatements struct{}

// Close is declared by hand.
func (UserStatements) Close() error { return nil }

// User is the entity of UserStatements.
type User struct {
	Id   int
	Name string
}

// Page is generic over its items and cursor.
type Page[T any, K comparable] struct {
	Items  []T
	Cursor K
}

var _ = UserStatements{}.SelectAll
