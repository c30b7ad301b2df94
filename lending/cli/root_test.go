package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScanCommand(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", ":memory:")
	t.Setenv("KAFKA_ENABLE", "false")
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"scan", "--env-file", ""})
	require.NoError(t, cmd.Execute())
	require.Equal(t, `{"dueLoans":0,"dueReminders":0,"lowStockBooks":0,"lowStockAlerts":0}`+"\n", out.String())
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	names := make([]string, 0)
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	require.ElementsMatch(t, []string{"serve", "migrate", "scan", "seed"}, names)
	_, err := (&RootOptions{LogLevel: "loud"}).config()
	require.Error(t, err)
}
