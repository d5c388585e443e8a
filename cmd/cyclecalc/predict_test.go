package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/tapmon/internal/domain/cycle"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPredict_Text(t *testing.T) {
	out, err := execute(t, "", "predict", "2024-01-01", "2024-01-29", "2024-02-26")
	require.NoError(t, err)
	require.Contains(t, out, "Ovulation:       2024-03-11")
	require.Contains(t, out, "Fertile window:  2024-03-06 to 2024-03-11")
	require.Contains(t, out, "Next period:     2024-03-25")
}

func TestPredict_JSONFromStdin(t *testing.T) {
	out, err := execute(t, "# history\n2024-01-01\n\n2024-02-05\n", "predict", "--format", "json")
	require.NoError(t, err)

	var view cycle.PredictionView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	require.Equal(t, 35, view.AverageCycleLength)
	require.Equal(t, "2024-02-26", view.OvulationDate)
	require.Equal(t, "2024-03-11", view.NextPeriod)
}

func TestPredict_CustomBand(t *testing.T) {
	_, err := execute(t, "", "predict", "2024-01-01", "2024-02-15")
	require.Error(t, err)

	out, err := execute(t, "", "predict", "--max", "50", "2024-01-01", "2024-02-15")
	require.NoError(t, err)
	require.Contains(t, out, "Average cycle:   45 days")
}

func TestPredict_Errors(t *testing.T) {
	_, err := execute(t, "", "predict", "2024-01-01")
	require.Error(t, err)

	_, err = execute(t, "", "predict", "2024-01-01", "2024-13-40")
	require.ErrorContains(t, err, "invalid date")

	_, err = execute(t, "", "predict", "--format", "xml", "2024-01-01", "2024-01-29")
	require.ErrorContains(t, err, "unknown format")

	_, err = execute(t, "", "predict", "--luteal", "30", "2024-01-01", "2024-01-29")
	require.Error(t, err)
}
