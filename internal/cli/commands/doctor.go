package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/openradius/radops/internal/api"
	"github.com/openradius/radops/internal/cli/config"
	"github.com/openradius/radops/internal/cli/output"
	"github.com/openradius/radops/internal/radacct"
)

// DoctorOptions holds options for the doctor command.
type DoctorOptions struct {
	Format string // text, json
}

// Check statuses. A warn degrades a feature; a fail blocks the console.
const (
	checkOK   = "ok"
	checkWarn = "warn"
	checkFail = "fail"
)

// DoctorCheck is one probe's result.
type DoctorCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Detail string `json:"detail"`
}

// DoctorReport is the JSON output for the doctor command.
type DoctorReport struct {
	Checks  []DoctorCheck `json:"checks"`
	Healthy bool          `json:"healthy"`
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	opts := &DoctorOptions{}

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the console's connections",
		Long: `Probe everything the console depends on and report what works:
the configuration file, the backend API, the accounting database, and the
log file. Exits non-zero when a required piece is broken.`,
		Example: `  # Human-readable report
  radops doctor

  # Machine-readable, for scripts
  radops doctor --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, json")

	return cmd
}

func runDoctor(cmd *cobra.Command, opts *DoctorOptions) error {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	report := DoctorReport{Healthy: true}
	add := func(name, status, detail string) {
		report.Checks = append(report.Checks, DoctorCheck{Name: name, Status: status, Detail: detail})
		if status == checkFail {
			report.Healthy = false
		}
	}

	if path := config.GetConfigFileUsed(); path != "" {
		add("config", checkOK, "using "+path)
	} else {
		add("config", checkWarn, "no config file found, using defaults")
	}

	client, err := api.NewClient(api.Config{
		BaseURL: cfg.API.URL,
		Token:   cfg.API.Token,
		Timeout: cfg.API.Timeout,
	}, logger)
	if err != nil {
		add("api", checkFail, err.Error())
	} else {
		started := time.Now()
		if err := client.Health(ctx); err != nil {
			add("api", checkFail, fmt.Sprintf("%s unreachable: %v", cfg.API.URL, err))
		} else {
			add("api", checkOK, fmt.Sprintf("%s responded in %s", cfg.API.URL, time.Since(started).Round(time.Millisecond)))
		}
	}

	// The sessions table degrades gracefully without radacct, so its
	// probes warn instead of failing.
	if rc := cfg.Radacct.StoreConfig(); !rc.Configured() {
		add("radacct", checkWarn, "not configured, sessions table disabled")
	} else if store, err := radacct.Open(ctx, rc, logger); err != nil {
		add("radacct", checkWarn, fmt.Sprintf("%s:%d unreachable: %v", rc.Host, rc.Port, err))
	} else {
		_ = store.Close()
		add("radacct", checkOK, fmt.Sprintf("connected to %s:%d/%s", rc.Host, rc.Port, rc.Database))
	}

	logPath := cfg.Log.File
	if logPath == "" {
		logPath = config.DefaultLogPath()
	}
	if f, err := config.OpenLogFile(logPath); err != nil {
		add("log", checkWarn, fmt.Sprintf("cannot write %s: %v", logPath, err))
	} else {
		_ = f.Close()
		add("log", checkOK, "writing to "+logPath)
	}

	r := newRenderer(cmd)
	if opts.Format == "json" || (opts.Format == "" && r.EffectiveMode() == output.ModeJSON) {
		if err := r.JSON(report); err != nil {
			return err
		}
	} else {
		renderDoctorText(r, report)
	}

	if !report.Healthy {
		return errors.New("health check failed")
	}
	return nil
}

func renderDoctorText(r *output.Renderer, report DoctorReport) {
	for _, c := range report.Checks {
		line := fmt.Sprintf("%-8s %s", c.Name, c.Detail)
		switch c.Status {
		case checkOK:
			r.Success(line)
		case checkWarn:
			r.Warning(line)
		default:
			r.Error(line)
		}
	}
	r.Println()
	if report.Healthy {
		r.Println("All required checks passed.")
	} else {
		r.Println("Fix the failed checks above, then re-run radops doctor.")
	}
}
