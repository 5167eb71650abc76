package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/location-directive-service/internal/application"
)

const validCatalog = `
directives:
  - id: 0f6a7d3e-1c2b-4c5d-8e9f-a0b1c2d3e4f1
    name: Fixed pick
    operationType: pick
    strategy: fixed
    priority: 1
  - id: 0f6a7d3e-1c2b-4c5d-8e9f-a0b1c2d3e4f2
    name: Empty put
    operationType: put
    strategy: random
    priority: 5
    constraints:
      - type: capacity_requirement
        operator: gte
        value: 1
locations:
  - id: A1-01-1
    attributes:
      available_capacity: 40
`

const invalidCatalog = `
directives:
  - id: 0f6a7d3e-1c2b-4c5d-8e9f-a0b1c2d3e4f3
    name: Fast movers
    operationType: pick
    strategy: fast_moving
    priority: 1
`

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "directives.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidate(t *testing.T) {
	out, err := execute(t, "validate", "--catalog", writeCatalog(t, validCatalog))
	require.NoError(t, err)
	assert.Contains(t, out, "Fixed pick")
	assert.Contains(t, out, "Empty put")

	out, err = execute(t, "validate", "--catalog", writeCatalog(t, invalidCatalog))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 directives have issues")
	assert.Contains(t, out, "Strategy requires zone configuration")
}

func TestSelect_FixedLocation(t *testing.T) {
	out, err := execute(t, "select", "--json",
		"--catalog", writeCatalog(t, validCatalog),
		"--operation", "pick",
		"--item", "SKU-1",
		"--param", "fixed_location=B2-03-4",
	)
	require.NoError(t, err)

	var selection application.SelectionDTO
	require.NoError(t, json.Unmarshal([]byte(out), &selection))
	assert.True(t, selection.Found)
	assert.Equal(t, "B2-03-4", selection.Location)
	assert.Equal(t, "Fixed pick", selection.DirectiveName)
}

func TestRank_HonoursLimit(t *testing.T) {
	out, err := execute(t, "rank", "--json",
		"--catalog", writeCatalog(t, validCatalog),
		"--operation", "put",
		"--item", "SKU-2",
		"--candidate", "A1-01-1,A1-01-2,A1-01-3",
		"--limit", "2",
	)
	require.NoError(t, err)

	var ranked []application.ScoredLocationDTO
	require.NoError(t, json.Unmarshal([]byte(out), &ranked))
	assert.LessOrEqual(t, len(ranked), 2)
}

func TestCommands_RejectBadInput(t *testing.T) {
	path := writeCatalog(t, validCatalog)

	_, err := execute(t, "select", "--catalog", path)
	assert.ErrorContains(t, err, "operation")

	_, err = execute(t, "select", "--catalog", path, "--operation", "teleport", "--item", "SKU-1")
	assert.Error(t, err)

	_, err = execute(t, "validate", "--catalog", path, "--order", "sideways")
	assert.Error(t, err)

	_, err = execute(t, "validate", "--catalog", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

const zoneCatalog = `
directives:
  - id: 0f6a7d3e-1c2b-4c5d-8e9f-a0b1c2d3e4f4
    name: Zone 01 picks
    operationType: pick
    strategy: zone_based
    priority: 1
    constraints:
      - type: zone_restriction
        operator: equals
        value: "01"
      - type: capacity_requirement
        operator: gte
        value: 5
`

func TestEvaluate_ParamsKeepTheirText(t *testing.T) {
	out, err := execute(t, "evaluate", "--json",
		"--catalog", writeCatalog(t, zoneCatalog),
		"--operation", "pick",
		"--item", "SKU-1",
		"--location", "A1-01-1",
		"--param", "zone=01",
		"--param", "available_capacity=8",
	)
	require.NoError(t, err)

	var eval application.EvaluationDTO
	require.NoError(t, json.Unmarshal([]byte(out), &eval))
	assert.True(t, eval.Suitable, "violations: %v", eval.Violations)
}

func TestQueryOptions_Command(t *testing.T) {
	q := queryOptions{operation: "pick", item: "SKU-1", quantity: 1, params: map[string]string{"zone": "01", "fixed_location": "B2-03-4"}}
	cmd := q.command()
	assert.Equal(t, "01", cmd.Parameters["zone"])
	assert.Equal(t, "B2-03-4", cmd.Parameters["fixed_location"])
}
