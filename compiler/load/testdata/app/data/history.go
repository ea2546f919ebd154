package data

//entitysql:generate Order "OrderHistory"
type HistoryQueries struct{}
