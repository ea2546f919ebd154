package models

// User is a registered account.
type User struct {
	Id       int64
	Name     string
	Email    string
	password string
	Audit
}

// Audit is embedded into entities.
type Audit struct {
	CreatedAt int64
}

// Empty has no exported fields.
type Empty struct {
	secret string
}
