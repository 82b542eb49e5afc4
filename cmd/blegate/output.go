package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/srg/blegate/session"
)

// verdictReport is the JSON shape printed by check --format json
type verdictReport struct {
	Granted bool `json:"granted"`
	*session.Result
	Error string `json:"error,omitempty"`
}

// printVerdict writes the outcome of a check session.
// Unavailable sessions print nothing in text mode; main reports the error.
func printVerdict(w io.Writer, format string, result *session.Result, runErr error) error {
	if format == "json" {
		report := verdictReport{Granted: result.Granted(), Result: result}
		if runErr != nil {
			report.Error = runErr.Error()
		}
		return writeJSON(w, report)
	}

	switch {
	case result.Granted():
		green := color.New(color.FgGreen)
		green.Fprintf(w, "Access Granted to device: %s\n", result.Match.Name)
		green.Fprintln(w, "Access Granted.")
	case result.State == session.StateTimedOut:
		color.New(color.FgRed).Fprintln(w, "Access Denied.")
	}
	return nil
}

// printDiscoveries writes a scan survey as a table or JSON, strongest signal first.
func printDiscoveries(w io.Writer, format string, result *session.Result) error {
	devices := make([]session.Discovery, len(result.Discovered))
	copy(devices, result.Discovered)
	sort.SliceStable(devices, func(i, j int) bool {
		return devices[i].RSSI > devices[j].RSSI
	})

	if format == "json" {
		return writeJSON(w, devices)
	}

	if len(devices) == 0 {
		fmt.Fprintln(w, "No devices discovered")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tIDENTIFIER\tRSSI\tFIRST SEEN")
	for _, d := range devices {
		name := d.Name
		if len(name) > 20 {
			name = name[:17] + "..."
		}
		firstSeen := d.SeenAt.Sub(result.StartedAt).Truncate(100 * time.Millisecond)
		if firstSeen < 0 {
			firstSeen = 0
		}
		fmt.Fprintf(tw, "%s\t%s\t%d dBm\t+%s\n", name, d.ID, d.RSSI, firstSeen)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
