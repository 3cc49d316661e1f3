package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"tripnotify/pkg/config"
)

// GatewayDiagnostic represents the diagnostic result for one channel gateway.
type GatewayDiagnostic struct {
	Channel       string  `json:"channel"`
	URL           string  `json:"url"`
	Status        string  `json:"status"` // "OK", "HTTP_ERROR", "TIMEOUT", "NOT_CONFIGURED", "REQUEST_ERROR"
	HTTPCode      int     `json:"http_code"`
	ErrorMessage  string  `json:"error_message,omitempty"`
	ResponseTime  int64   `json:"response_time_ms"`
	RatePerSecond float64 `json:"rate_per_second"`
	Burst         int     `json:"burst"`
}

// pingEnvelope mirrors the delivery envelope the engine sends, with a
// request ID gateways can use to recognize and discard diagnostic traffic.
type pingEnvelope struct {
	RequestID       string `json:"request_id"`
	NotificationID  string `json:"notification_id"`
	RecipientUserID string `json:"recipient_user_id"`
	Channel         string `json:"channel"`
}

func main() {
	limits, err := config.LoadDeliveryLimits()
	if err != nil {
		log.Fatalf("Failed to load delivery limits: %v", err)
	}

	channels := []struct {
		name   string
		limits config.ChannelLimits
	}{
		{"push", limits.Push},
		{"email", limits.Email},
		{"sms", limits.SMS},
	}

	log.Printf("Diagnosing %d channel gateways...\n", len(channels))

	diagnostics := make([]GatewayDiagnostic, 0, len(channels))
	for i, ch := range channels {
		log.Printf("[%d/%d] Diagnosing: %s", i+1, len(channels), ch.name)
		diag := diagnoseGateway(ch.name, ch.limits)
		diagnostics = append(diagnostics, diag)

		// Rate limiting to be nice to gateways
		time.Sleep(500 * time.Millisecond)
	}

	generateReport(diagnostics)
	generateJSONReport(diagnostics)
}

func diagnoseGateway(channel string, limits config.ChannelLimits) GatewayDiagnostic {
	diag := GatewayDiagnostic{
		Channel:       channel,
		URL:           limits.WebhookURL,
		RatePerSecond: limits.RequestsPerSecond,
		Burst:         limits.Burst,
	}

	if limits.WebhookURL == "" {
		diag.Status = "NOT_CONFIGURED"
		diag.ErrorMessage = "no webhook URL set, channel uses the no-op provider"
		return diag
	}

	timeout := limits.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	payload, err := json.Marshal(pingEnvelope{
		RequestID:       "diagnostic-ping",
		NotificationID:  "diagnostic",
		RecipientUserID: "diagnostic",
		Channel:         channel,
	})
	if err != nil {
		diag.Status = "REQUEST_ERROR"
		diag.ErrorMessage = err.Error()
		return diag
	}

	startTime := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, limits.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		diag.Status = "REQUEST_ERROR"
		diag.ErrorMessage = err.Error()
		return diag
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "TripHerd-Diagnostic/1.0")

	resp, err := http.DefaultClient.Do(req)
	diag.ResponseTime = time.Since(startTime).Milliseconds()

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			diag.Status = "TIMEOUT"
			diag.ErrorMessage = fmt.Sprintf("Request timeout after %v", timeout)
		} else {
			diag.Status = "HTTP_ERROR"
			diag.ErrorMessage = err.Error()
		}
		return diag
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("Failed to close response body: %v", err)
		}
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	diag.HTTPCode = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		diag.Status = "HTTP_ERROR"
		diag.ErrorMessage = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, resp.Status)
		return diag
	}

	diag.Status = "OK"
	return diag
}

// writef is a helper to write to file and handle errors
func writef(f *os.File, format string, args ...interface{}) error {
	_, err := fmt.Fprintf(f, format, args...)
	return err
}

func generateReport(diagnostics []GatewayDiagnostic) {
	f, err := os.Create("gateway_diagnostic_report.txt")
	if err != nil {
		log.Printf("Failed to create report file: %v", err)
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Failed to close report file: %v", err)
		}
	}()

	writeErr := func(err error) bool {
		if err != nil {
			log.Printf("Failed to write to report: %v", err)
			return true
		}
		return false
	}

	if writeErr(writef(f, "===============================================\n")) {
		return
	}
	if writeErr(writef(f, "Channel Gateway Diagnostic Report\n")) {
		return
	}
	if writeErr(writef(f, "Generated: %s\n", time.Now().Format(time.RFC3339))) {
		return
	}
	if writeErr(writef(f, "Total Channels: %d\n", len(diagnostics))) {
		return
	}
	if writeErr(writef(f, "===============================================\n\n")) {
		return
	}

	statusCount := make(map[string]int)
	var okCount, errorCount int
	for _, d := range diagnostics {
		statusCount[d.Status]++
		switch d.Status {
		case "OK", "NOT_CONFIGURED":
			okCount++
		default:
			errorCount++
		}
	}

	_ = writef(f, "SUMMARY:\n")
	_ = writef(f, "  ✅ Healthy: %d\n", okCount)
	_ = writef(f, "  ❌ Broken: %d\n", errorCount)
	_ = writef(f, "\nSTATUS BREAKDOWN:\n")
	for status, count := range statusCount {
		_ = writef(f, "  %s: %d\n", status, count)
	}
	_ = writef(f, "\n")

	_ = writef(f, "DETAILED RESULTS:\n")
	_ = writef(f, "===============================================\n\n")
	for _, d := range diagnostics {
		_ = writef(f, "Channel: %s\n", d.Channel)
		if d.URL != "" {
			_ = writef(f, "  URL: %s\n", d.URL)
		}
		_ = writef(f, "  Status: %s\n", d.Status)
		if d.HTTPCode != 0 {
			_ = writef(f, "  HTTP: %d | Response: %dms\n", d.HTTPCode, d.ResponseTime)
		}
		_ = writef(f, "  Rate: %.1f req/s | Burst: %d\n", d.RatePerSecond, d.Burst)
		if d.ErrorMessage != "" {
			_ = writef(f, "  Error: %s\n", d.ErrorMessage)
		}
		_ = writef(f, "\n")
	}

	log.Println("✅ Text report generated: gateway_diagnostic_report.txt")
}

func generateJSONReport(diagnostics []GatewayDiagnostic) {
	f, err := os.Create("gateway_diagnostic_report.json")
	if err != nil {
		log.Printf("Failed to create JSON report: %v", err)
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Failed to close JSON report file: %v", err)
		}
	}()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(diagnostics); err != nil {
		log.Printf("Failed to write JSON report: %v", err)
		return
	}

	log.Println("✅ JSON report generated: gateway_diagnostic_report.json")
}
