package data

import (
	m "github.com/syssam/entitysql/compiler/load/testdata/app/models"
)

// UserQueries holds the statements of the users table.
//
//entitysql:generate m.User "Users"
type UserQueries struct{}

//entitysql:crud m.User "Archive"
type ArchiveQueries int

//go:generate echo not a marker
//entitysql:generate Order "Orders"
type OrderQueries struct{}

// Order is declared after the queries that use it.
type Order struct {
	Id    int
	Total float64
}

//entitysql:generate m.User
type Broken struct{}

//entitysql:generate m.Missing "Nothing"
type Missing struct{}

type (
	// Store is not a target.
	Store interface{ Close() error }

	//entitysql:generate Order "Orders"
	Alias = OrderQueries
)

var _ m.User
