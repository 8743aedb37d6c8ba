package commands_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/husca"
	"github.com/dmitrymomot/husca/example/commands"
	"github.com/dmitrymomot/husca/example/routes"
	"github.com/dmitrymomot/husca/pkg/cache"
)

func TestUsers(t *testing.T) {
	t.Parallel()

	store := cache.NewMemory[routes.User]()
	t.Cleanup(func() { _ = store.Close() })

	var stdout, stderr bytes.Buffer
	console := husca.NewConsole(
		husca.WithCommanders(commands.Users(store)),
		husca.WithOutput(&stdout),
		husca.WithErrorOutput(&stderr),
	)

	code := console.Exec(t.Context(), []string{"users:create", "--name=Ann", "--email=ann@example.com"})
	require.Equal(t, 0, code, stderr.String())
	id := strings.TrimSpace(stdout.String())
	require.NotEmpty(t, id)

	stdout.Reset()
	require.Equal(t, 0, console.Exec(t.Context(), []string{"users:show", id}))
	require.Equal(t, id+"\tAnn\tann@example.com\n", stdout.String())

	require.Equal(t, 1, console.Exec(t.Context(), []string{"users:create", "--name=Ann"}))
	require.Equal(t, 1, console.Exec(t.Context(), []string{"users:show"}))
	require.Equal(t, 127, console.Exec(t.Context(), []string{"users:drop"}))
}
