package gen

import "strings"

// IDColumn is the column matched by the "ById" statements. It is compared
// by exact, case-sensitive name and is never assigned by UpdateById.
const IDColumn = "Id"

// columnSep separates entries of column, parameter and assignment lists.
const columnSep = ",\n    "

// Statements holds the five SQL templates of one entity and table.
type Statements struct {
	SelectAll  string
	SelectById string
	Insert     string
	UpdateById string
	DeleteById string
}

// StatementNames lists the statement names in rendering order.
var StatementNames = [...]string{"SelectAll", "SelectById", "Insert", "UpdateById", "DeleteById"}

// BuildStatements renders the five templates for the table. Columns keep
// their order; nothing is sorted, deduplicated or escaped. An empty column
// list yields empty lists rather than an error.
func BuildStatements(table string, columns []string) Statements {
	cols := strings.Join(columns, columnSep)
	params := make([]string, len(columns))
	for i, c := range columns {
		params[i] = "@" + c
	}
	var sets []string
	for _, c := range columns {
		if c == IDColumn {
			continue
		}
		sets = append(sets, c+" = @"+c)
	}
	return Statements{
		SelectAll:  "SELECT\n    " + cols + "\nFROM " + table + "\n",
		SelectById: "SELECT\n    " + cols + "\nFROM " + table + "\nWHERE Id = @Id\n",
		Insert: "INSERT INTO " + table + "\n    (" + cols + ")\nVALUES\n    (" +
			strings.Join(params, columnSep) + ")\n",
		UpdateById: "UPDATE " + table + "\nSET " + strings.Join(sets, columnSep) + "\nWHERE Id = @Id\n",
		DeleteById: "DELETE FROM " + table + "\nWHERE Id = @Id\n",
	}
}

// Get returns the statement with the given name.
func (s Statements) Get(name string) (string, bool) {
	switch name {
	case "SelectAll":
		return s.SelectAll, true
	case "SelectById":
		return s.SelectById, true
	case "Insert":
		return s.Insert, true
	case "UpdateById":
		return s.UpdateById, true
	case "DeleteById":
		return s.DeleteById, true
	default:
		return "", false
	}
}
