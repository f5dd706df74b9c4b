package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rxtech-lab/argo-grid/internal/metrics"
	"github.com/rxtech-lab/argo-grid/internal/version"
	"github.com/stretchr/testify/suite"
)

type GridTraderCommandTestSuite struct {
	suite.Suite
}

func TestGridTraderCommandSuite(t *testing.T) {
	suite.Run(t, new(GridTraderCommandTestSuite))
}

func (suite *GridTraderCommandTestSuite) TestVersion() {
	var out bytes.Buffer

	cmd := newCommand()
	cmd.Writer = &out

	suite.Require().NoError(cmd.Run(context.Background(), []string{"grid-trader", "version"}))
	suite.Equal(version.GetVersion(), strings.TrimSpace(out.String()))
}

func (suite *GridTraderCommandTestSuite) TestSchemaToStdout() {
	var out bytes.Buffer

	cmd := newCommand()
	cmd.Writer = &out

	suite.Require().NoError(cmd.Run(context.Background(), []string{"grid-trader", "schema"}))
	suite.Contains(out.String(), "grid_step")
}

func (suite *GridTraderCommandTestSuite) TestSchemaToFile() {
	output := filepath.Join(suite.T().TempDir(), "schema.json")

	cmd := newCommand()
	suite.Require().NoError(cmd.Run(context.Background(), []string{"grid-trader", "schema", "--output", output}))

	data, err := os.ReadFile(output)
	suite.Require().NoError(err)
	suite.Contains(string(data), "max_position_multiple")
}

func (suite *GridTraderCommandTestSuite) TestRunRejectsMissingConfig() {
	cmd := newCommand()
	err := cmd.Run(context.Background(), []string{"grid-trader", "run", "--config", filepath.Join(suite.T().TempDir(), "missing.yaml")})
	suite.Error(err)
}

func (suite *GridTraderCommandTestSuite) TestMetricsRouter() {
	recorder := metrics.NewRecorder("BTCUSDT")
	recorder.ObserveQuote()

	server := httptest.NewServer(newMetricsRouter(recorder))
	defer server.Close()

	response, err := http.Get(server.URL + "/metrics")
	suite.Require().NoError(err)

	body, err := io.ReadAll(response.Body)
	suite.Require().NoError(response.Body.Close())
	suite.Require().NoError(err)
	suite.Equal(http.StatusOK, response.StatusCode)
	suite.Contains(string(body), "grid_quotes_total")

	response, err = http.Get(server.URL + "/healthz")
	suite.Require().NoError(err)
	suite.Require().NoError(response.Body.Close())
	suite.Equal(http.StatusOK, response.StatusCode)

	response, err = http.Post(server.URL+"/metrics", "text/plain", nil)
	suite.Require().NoError(err)
	suite.Require().NoError(response.Body.Close())
	suite.Equal(http.StatusMethodNotAllowed, response.StatusCode)
}
