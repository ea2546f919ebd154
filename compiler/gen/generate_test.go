package gen

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/entitysql/compiler/load"
)

// mixedSnapshot holds valid requests interleaved with every kind of
// failure a pass reports.
func mixedSnapshot() *load.Snapshot {
	return load.NewSnapshot(
		target("UserSql", marker(MarkerGenerate, typeArg(modelsPkg, "User"), strArg("Users"))),
		target("Broken", marker(MarkerGenerate, typeArg(modelsPkg, "User"))),
		target("MissingSql", marker(MarkerGenerate, typeArg(modelsPkg, "Missing"), strArg("Nothing"))),
		target("EmptySql", marker(MarkerGenerate, typeArg(modelsPkg, "Empty"), strArg("Empties"))),
		target("OrderSql",
			marker(MarkerGenerate, typeArg(modelsPkg, "Order"), strArg("Orders")),
			marker(MarkerCrud, typeArg(modelsPkg, "Order"), strArg("OrderHistory")),
		),
		target("AuditSql", marker(MarkerCrud, typeArg(modelsPkg, "User"), strArg("UsersAudit"))),
		entity("User", "Id", "Name", "Email"),
		entity("Order", "Id", "Total"),
		entity("Empty"),
	)
}

func keys(outs []*Output) []string {
	var ks []string
	for _, o := range outs {
		ks = append(ks, o.Key)
	}
	return ks
}

func TestGenerate(t *testing.T) {
	res, err := Generate(context.Background(), testSnapshot(), MustNewConfig())
	require.NoError(t, err)
	require.NoError(t, res.Err())
	assert.Len(t, res.Requests, 2)
	assert.Equal(t, []string{dataPkg + ".UserSql", dataPkg + ".AuditSql"}, keys(res.Outputs))
	assert.Equal(t, "Users", res.Outputs[0].Request.Table)
	assert.Equal(t, "UsersAudit", res.Outputs[1].Request.Table)
}

func TestGenerateDiagnostics(t *testing.T) {
	res, err := Generate(context.Background(), mixedSnapshot(), MustNewConfig())
	require.NoError(t, err)

	t.Run("valid requests are unaffected", func(t *testing.T) {
		assert.Equal(t, []string{
			dataPkg + ".UserSql",
			dataPkg + ".OrderSql",
			dataPkg + ".AuditSql",
		}, keys(res.Outputs))
	})

	t.Run("first output of a target wins", func(t *testing.T) {
		order := res.Outputs[1]
		assert.Equal(t, "Orders", order.Request.Table)
		assert.Equal(t, "DELETE FROM Orders\nWHERE Id = @Id\n", order.Statements.DeleteById)
	})

	t.Run("every failure is reported in order", func(t *testing.T) {
		require.Len(t, res.Diagnostics, 4)
		assert.True(t, errors.Is(res.Diagnostics[0], ErrInvalidMarker))
		assert.True(t, errors.Is(res.Diagnostics[1], ErrUnresolvedEntity))
		assert.True(t, errors.Is(res.Diagnostics[2], ErrEmptyEntity))
		assert.True(t, errors.Is(res.Diagnostics[3], ErrDuplicateOutput))
		assert.True(t, errors.Is(res.Diagnostics[3], ErrGenerationFailed))
	})

	t.Run("joined error", func(t *testing.T) {
		err := res.Err()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidMarker))
		assert.True(t, errors.Is(err, ErrEmptyEntity))
		assert.Contains(t, err.Error(), dataPkg+".Broken")
		assert.Contains(t, err.Error(), dataPkg+".MissingSql")
	})
}

func TestGenerateFileCollision(t *testing.T) {
	snap := load.NewSnapshot(
		target("UserSql", marker(MarkerGenerate, typeArg(modelsPkg, "User"), strArg("Users"))),
		target("userSql", marker(MarkerGenerate, typeArg(modelsPkg, "User"), strArg("UsersLegacy"))),
		target("User_Sql", marker(MarkerCrud, typeArg(modelsPkg, "User"), strArg("UsersSnake"))),
		target("OrderSql", marker(MarkerGenerate, typeArg(modelsPkg, "User"), strArg("Orders"))),
		entity("User", "Id", "Name"),
	)
	for _, workers := range []int{1, 8} {
		res, err := Generate(context.Background(), snap, MustNewConfig(WithWorkers(workers)))
		require.NoError(t, err)
		require.Equal(t, []string{dataPkg + ".UserSql", dataPkg + ".OrderSql"}, keys(res.Outputs))
		assert.Equal(t, "Users", res.Outputs[0].Request.Table, "first target keeps the file")

		paths := make(map[string]bool)
		for _, o := range res.Outputs {
			assert.False(t, paths[o.Path()], "%s is written once", o.Path())
			paths[o.Path()] = true
		}
		require.Len(t, res.Diagnostics, 2)
		for _, d := range res.Diagnostics {
			assert.True(t, errors.Is(d, ErrDuplicateOutput))
			assert.Contains(t, d.Error(), "user_sql_entitysql.go")
			assert.Contains(t, d.Error(), dataPkg+".UserSql")
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	snap := mixedSnapshot()
	first, err := Generate(context.Background(), snap, MustNewConfig(WithWorkers(1)))
	require.NoError(t, err)
	for _, workers := range []int{1, 4, 16} {
		res, err := Generate(context.Background(), snap, MustNewConfig(WithWorkers(workers)))
		require.NoError(t, err)
		require.Equal(t, keys(first.Outputs), keys(res.Outputs))
		for i := range res.Outputs {
			assert.Equal(t, first.Outputs[i].Text, res.Outputs[i].Text)
		}
		assert.Equal(t, first.Err().Error(), res.Err().Error())
	}
}

func TestGenerateLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	_, err := Generate(context.Background(), mixedSnapshot(), MustNewConfig(WithLogger(logger)))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "rendering request")
	assert.Contains(t, out, "dropping malformed marker")
	assert.Contains(t, out, "dropping request")
	assert.Contains(t, out, "generation pass complete")
	assert.Contains(t, out, "outputs=3")
}

func TestGenerateErrors(t *testing.T) {
	t.Run("nil snapshot", func(t *testing.T) {
		_, err := Generate(context.Background(), nil, nil)
		require.Error(t, err)
		assert.True(t, IsConfigError(err))
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Generate(ctx, testSnapshot(), nil)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("empty snapshot", func(t *testing.T) {
		res, err := Generate(context.Background(), load.NewSnapshot(), nil)
		require.NoError(t, err)
		assert.Empty(t, res.Outputs)
		assert.NoError(t, res.Err())
	})
}
