//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/gorilla/websocket"
)

// testContext holds state shared across step definitions within a scenario.
type testContext struct {
	opts         stackOptions
	stack        *stack
	stream       *websocket.Conn
	status       int
	responseBody []byte
	lastSpin     *spinBody
}

// spinBody is the part of a spin response the steps check.
type spinBody struct {
	SessionID  string `json:"sessionId"`
	FinalQuote struct {
		Text string `json:"text"`
	} `json:"finalQuote"`
	DurationMS int64 `json:"durationMs"`
}

// reset tears down the previous scenario's service.
func (tc *testContext) reset() {
	if tc.stream != nil {
		_ = tc.stream.Close()
	}

	tc.stack.close()

	*tc = testContext{}
}

// InitializeScenario registers step definitions for each scenario.
func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &testContext{}

	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.After(func(ctx context.Context, _ *godog.Scenario, _ error) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^the quote configuration has (\d+) quotes?$`, tc.theConfigurationHasQuotes)
	ctx.Step(`^the quote configuration has (\d+) quotes pinned to "([^"]*)"$`, tc.theConfigurationHasPinnedQuotes)
	ctx.Step(`^the quote configuration is unavailable$`, tc.theConfigurationIsUnavailable)
	ctx.Step(`^the service is running$`, tc.theServiceIsRunning)
	ctx.Step(`^I am watching the stream$`, tc.iAmWatchingTheStream)
	ctx.Step(`^I request (GET|POST) "([^"]*)"$`, tc.iRequest)
	ctx.Step(`^I request PUT "([^"]*)" with body '([^']*)'$`, tc.iRequestPUTWithBody)
	ctx.Step(`^the response status should be (\d+)$`, tc.theResponseStatusShouldBe)
	ctx.Step(`^the response should contain "([^"]*)"$`, tc.theResponseShouldContain)
	ctx.Step(`^the response should contain '([^']*)'$`, tc.theResponseShouldContain)
	ctx.Step(`^the spin should land on "([^"]*)"$`, tc.theSpinShouldLandOn)
	ctx.Step(`^the stream should report the spin complete$`, tc.theStreamShouldReportTheSpinComplete)
	ctx.Step(`^the display should show the final quote$`, tc.theDisplayShouldShowTheFinalQuote)
	ctx.Step(`^the readiness check should fail$`, tc.theReadinessCheckShouldFail)
}

func (tc *testContext) theConfigurationHasQuotes(n int) error {
	tc.opts = stackOptions{document: quoteDocument(n, "")}
	return nil
}

func (tc *testContext) theConfigurationHasPinnedQuotes(n int, pinned string) error {
	tc.opts = stackOptions{document: quoteDocument(n, pinned)}
	return nil
}

func (tc *testContext) theConfigurationIsUnavailable() error {
	tc.opts = stackOptions{status: http.StatusBadGateway, document: `{"error":"upstream down"}`}
	return nil
}

// theServiceIsRunning starts the service and checks liveness.
func (tc *testContext) theServiceIsRunning() error {
	s, err := startStack(tc.opts)
	if err != nil {
		return fmt.Errorf("starting service: %w", err)
	}

	tc.stack = s

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status, _, err := s.do(ctx, http.MethodGet, "/-/live", "")
	if err != nil {
		return fmt.Errorf("service is not running: %w", err)
	}

	if status != http.StatusOK {
		return fmt.Errorf("liveness check failed with status %d", status)
	}

	return nil
}

func (tc *testContext) iAmWatchingTheStream() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := tc.stack.dialStream(ctx)
	if err != nil {
		return err
	}

	tc.stream = conn

	_, err = awaitMessage(conn, 2*time.Second, func(m streamMessage) bool { return m.Type == "snapshot" })

	return err
}

func (tc *testContext) iRequest(method, path string) error {
	return tc.request(method, path, "")
}

func (tc *testContext) iRequestPUTWithBody(path, body string) error {
	return tc.request(http.MethodPut, path, body)
}

func (tc *testContext) request(method, path, body string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	status, data, err := tc.stack.do(ctx, method, path, body)
	if err != nil {
		return err
	}

	tc.status = status
	tc.responseBody = data

	if method == http.MethodPost && status == http.StatusAccepted {
		var spin spinBody
		if err := json.Unmarshal(data, &spin); err != nil {
			return fmt.Errorf("decoding spin response: %w", err)
		}

		tc.lastSpin = &spin
	}

	return nil
}

// theResponseStatusShouldBe asserts the response status code.
func (tc *testContext) theResponseStatusShouldBe(expectedCode int) error {
	if tc.status == 0 {
		return fmt.Errorf("no response received")
	}

	if tc.status != expectedCode {
		return fmt.Errorf("expected status %d, got %d. Body: %s",
			expectedCode, tc.status, string(tc.responseBody))
	}

	return nil
}

// theResponseShouldContain asserts the response body contains the given text.
func (tc *testContext) theResponseShouldContain(text string) error {
	if tc.responseBody == nil {
		return fmt.Errorf("no response body")
	}

	if !strings.Contains(string(tc.responseBody), text) {
		return fmt.Errorf("response body does not contain %q.\nBody: %s", text, tc.responseBody)
	}

	return nil
}

func (tc *testContext) theSpinShouldLandOn(text string) error {
	if tc.lastSpin == nil {
		return fmt.Errorf("no spin was accepted")
	}

	if tc.lastSpin.FinalQuote.Text != text {
		return fmt.Errorf("expected spin to land on %q, got %q", text, tc.lastSpin.FinalQuote.Text)
	}

	return nil
}

func (tc *testContext) theStreamShouldReportTheSpinComplete() error {
	if tc.stream == nil || tc.lastSpin == nil {
		return fmt.Errorf("need an open stream and an accepted spin")
	}

	msg, err := awaitMessage(tc.stream, 3*time.Second, func(m streamMessage) bool {
		return m.Type == "complete" && m.SessionID == tc.lastSpin.SessionID
	})
	if err != nil {
		return err
	}

	if msg.Quote == nil || msg.Quote.Text != tc.lastSpin.FinalQuote.Text {
		return fmt.Errorf("completion carried %+v, want %q", msg.Quote, tc.lastSpin.FinalQuote.Text)
	}

	return nil
}

func (tc *testContext) theDisplayShouldShowTheFinalQuote() error {
	if tc.lastSpin == nil {
		return fmt.Errorf("no spin was accepted")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, data, err := tc.stack.do(ctx, http.MethodGet, "/api/v1/display", "")
	if err != nil {
		return err
	}

	var display struct {
		Quote *struct {
			Text string `json:"text"`
		} `json:"quote"`
		IsFinal  bool `json:"isFinal"`
		Spinning bool `json:"spinning"`
	}
	if err := json.Unmarshal(data, &display); err != nil {
		return fmt.Errorf("decoding display: %w", err)
	}

	if display.Spinning || !display.IsFinal {
		return fmt.Errorf("display is not final: %s", data)
	}

	if display.Quote == nil || display.Quote.Text != tc.lastSpin.FinalQuote.Text {
		return fmt.Errorf("display shows %s, want %q", data, tc.lastSpin.FinalQuote.Text)
	}

	return nil
}

func (tc *testContext) theReadinessCheckShouldFail() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status, data, err := tc.stack.do(ctx, http.MethodGet, "/-/ready", "")
	if err != nil {
		return err
	}

	if status != http.StatusServiceUnavailable {
		return fmt.Errorf("expected readiness 503, got %d: %s", status, data)
	}

	return nil
}

// TestFeatures runs the GoDog BDD test suite.
func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../features"},
			TestingT: t,
			Tags:     os.Getenv("GODOG_TAGS"),
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
