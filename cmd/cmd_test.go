package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/grindlog/internal/api"
	"github.com/abhisek/grindlog/internal/cycle"
)

// resetFlags restores every flag in the tree to its default. Commands are
// package globals, so values would otherwise leak between executions.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

type cli struct {
	t   *testing.T
	dir string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("GRINDLOG_DB", "")
	return &cli{t: t, dir: t.TempDir()}
}

func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--quiet", "--driver", "file", "--db", c.dir}, args...))

	err := rootCmd.Execute()
	return out.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, out)
	return out
}

func TestDoneUndoLink(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("--user", "alice", "done", "2", "--date", "2025-01-03",
		"--link", "https://leetcode.com/problems/two-sum/")
	assert.Contains(t, out, "2025-01-03 problem 2: complete")
	assert.Contains(t, out, "total 1/")

	out = c.mustRun("--user", "alice", "day", "2025-01-03")
	assert.Contains(t, out, "[x] 2  https://leetcode.com/problems/two-sum/")
	assert.Contains(t, out, "1/6 done")
	assert.Contains(t, out, "cycle day 3/14")

	c.mustRun("--user", "alice", "link", "5", "https://leetcode.com/problems/3sum/", "--date", "2025-01-03")
	out = c.mustRun("--user", "alice", "undo", "2", "--date", "2025-01-03")
	assert.Contains(t, out, "problem 2: incomplete")

	out = c.mustRun("--user", "alice", "day", "2025-01-03")
	assert.Contains(t, out, "[ ] 2\n")
	assert.Contains(t, out, "[x] 5  https://leetcode.com/problems/3sum/")

	// Another user's data is separate.
	out = c.mustRun("--user", "bob", "day", "2025-01-03")
	assert.Contains(t, out, "0/6 done")
}

func TestProblemArgumentErrors(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("done", "7", "--date", "2025-01-03")
	assert.Error(t, err)

	_, err = c.run("done", "two", "--date", "2025-01-03")
	assert.Error(t, err)

	_, err = c.run("done", "1", "--date", "2025-01-03", "--link", "not a url")
	assert.Error(t, err)

	_, err = c.run("day", "someday")
	assert.Error(t, err)
}

func TestInitConflict(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("--user", "carol", "init", "--start", "2025-01-01", "--target", "2025-03-01", "--total", "150")
	assert.Contains(t, out, "150 problems from 2025-01-01 to 2025-03-01")

	_, err := c.run("--user", "carol", "init", "--start", "2025-01-01", "--target", "2025-03-01")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already has a plan")
}

func TestExportImportRepair(t *testing.T) {
	c := newCLI(t)
	c.mustRun("--user", "alice", "done", "1", "--date", "2025-01-02")
	c.mustRun("--user", "alice", "done", "2", "--date", "2025-01-02")

	file := filepath.Join(t.TempDir(), "snap.json")
	c.mustRun("--user", "alice", "export", "-o", file)
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"currentTotal": 2`)

	out := c.mustRun("--user", "dave", "import", file)
	assert.Contains(t, out, "Imported 1 days, 2/")

	out = c.mustRun("--user", "dave", "stats")
	assert.Contains(t, out, "dave")
	assert.Contains(t, out, "2/300")

	out = c.mustRun("--user", "dave", "repair")
	assert.Contains(t, out, "Nothing to repair")

	require.NoError(t, os.WriteFile(file, []byte(`{"days": 1}`), 0o644))
	_, err = c.run("--user", "dave", "import", file)
	assert.Error(t, err)
}

func TestLog(t *testing.T) {
	c := newCLI(t)
	out := c.mustRun("--user", "alice", "log")
	assert.Contains(t, out, "No activity yet")

	c.mustRun("--user", "alice", "done", "1", "--date", "2025-01-02", "--link", "https://example.com/1")
	c.mustRun("--user", "alice", "undo", "1", "--date", "2025-01-02")

	out = c.mustRun("--user", "alice", "log")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "uncomplete 2025-01-02 problem 1")
	assert.Contains(t, lines[1], "complete   2025-01-02 problem 1  https://example.com/1")

	out = c.mustRun("--user", "alice", "log", "-n", "1")
	assert.Equal(t, 1, strings.Count(out, "problem 1"))

	_, err := c.run("--user", "alice", "log", "--limit=-3")
	assert.Error(t, err)
}

func TestWeekAndMonth(t *testing.T) {
	c := newCLI(t)
	c.mustRun("--user", "alice", "done", "3", "--date", "2025-02-05")

	out := c.mustRun("--user", "alice", "week", "2025-02-05")
	assert.Contains(t, out, "Mon 2025-02-03")
	assert.Contains(t, out, "Sun 2025-02-09")
	assert.Contains(t, out, "1 of 42 problems")

	out = c.mustRun("--user", "alice", "month", "2025-02")
	assert.Equal(t, 28, strings.Count(out, "/6 "))
	assert.Contains(t, out, "1 of 168 problems")

	_, err := c.run("month", "February")
	assert.Error(t, err)
}

func TestParseMonth(t *testing.T) {
	tests := []struct {
		in     string
		year   int
		month0 int
		ok     bool
	}{
		{"2025-01", 2025, 0, true},
		{"2024-12", 2024, 11, true},
		{"2024-13", 0, 0, false},
		{"2024", 0, 0, false},
	}
	for _, tt := range tests {
		y, m, err := parseMonth(tt.in)
		if !tt.ok {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.year, y)
		assert.Equal(t, tt.month0, m)
	}
}

func TestTheme(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("theme", "2024-11-20")
	assert.Contains(t, out, "cycle day 1/14")
	assert.Contains(t, out, cycle.Themes[0])

	out = c.mustRun("theme", "2024-11-19", "--all")
	assert.Contains(t, out, "cycle day 14/14")
	assert.Contains(t, out, "Rotation:")
}

func TestToken(t *testing.T) {
	c := newCLI(t)

	t.Setenv("GRINDLOG_AUTH_JWT_SECRET", "")
	t.Setenv("JWT_SECRET", "")
	_, err := c.run("token", "--user", "erin")
	assert.Error(t, err)

	t.Setenv("GRINDLOG_AUTH_JWT_SECRET", "cli-secret")
	out := c.mustRun("token", "--user", "erin")
	user, err := api.ParseToken("cli-secret", strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "erin", user)
}

func TestVersion(t *testing.T) {
	c := newCLI(t)
	assert.True(t, strings.HasPrefix(c.mustRun("version"), "grindlog "))
}
