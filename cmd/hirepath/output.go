package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"hirepath/internal/notify"
	"hirepath/internal/pkg/apperror"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printYAML renders v with its JSON field names so both formats show the same keys.
func printYAML(v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return err
	}
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(generic)
}

// printStructured prints v as JSON or YAML. Table output falls back to YAML for detail views.
func printStructured(v any) error {
	switch strings.ToLower(outputFormat) {
	case "json":
		return printJSON(v)
	case "yaml", "table", "":
		return printYAML(v)
	default:
		return fmt.Errorf("unknown output format %q", outputFormat)
	}
}

func tableOutput() bool {
	f := strings.ToLower(outputFormat)
	return f == "table" || f == ""
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
}

func printTableHeader(w *tabwriter.Writer, cols ...string) {
	fmt.Fprintln(w, strings.Join(cols, "\t"))
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", apperror.Message(err, err.Error()))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

// drainNotifications prints the notifications already queued on feed without waiting for more.
func drainNotifications(feed <-chan notify.Notification) {
	for {
		select {
		case n := <-feed:
			fmt.Fprintf(os.Stderr, "[%s] %s\n", strings.ToUpper(string(n.Level)), n.Message)
		default:
			return
		}
	}
}
