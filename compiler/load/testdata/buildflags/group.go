//go:build !hidegroups

package buildflags

//entitysql:generate Group "Groups"
type GroupQueries struct{}

// Group is only visible without the hidegroups tag.
type Group struct {
	Id   int
	Name string
}
