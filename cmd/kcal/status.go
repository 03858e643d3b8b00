package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/charlie0129/kcal/pkg/client"
	"github.com/charlie0129/kcal/pkg/config"
)

type statusData struct {
	version     string
	red         int
	green       int
	blue        int
	applyOK     bool
	lut         *client.LUT
	config      *config.RawFileConfig
}

type statusJSON struct {
	ProtocolVersion string           `json:"protocolVersion"`
	Gain            statusGainJSON   `json:"gain"`
	LastApplyOK     bool             `json:"lastApplyOk"`
	LUT             statusLUTJSON    `json:"lut"`
	Configuration   statusConfigJSON `json:"configuration"`
}

type statusGainJSON struct {
	Red   int `json:"red"`
	Green int `json:"green"`
	Blue  int `json:"blue"`
}

type statusLUTJSON struct {
	Linear   bool  `json:"linear"`
	Modified []int `json:"modified"`
}

type statusConfigJSON struct {
	Sink               string `json:"sink"`
	SinkTarget         string `json:"sinkTarget,omitempty"`
	ReapplySchedule    string `json:"reapplySchedule,omitempty"`
	ApplyOnStart       bool   `json:"applyOnStart"`
	AllowNonRootAccess bool   `json:"allowNonRootAccess"`
}

// fetchStatusData gathers all data required for the status command from the daemon.
func fetchStatusData() (*statusData, error) {
	v, err := apiClient.GetVersion()
	if err != nil {
		return nil, fmt.Errorf("failed to get version: %w", err)
	}

	r, g, b, err := apiClient.GetTriplet()
	if err != nil {
		return nil, fmt.Errorf("failed to get rgb: %w", err)
	}

	applyOK, err := apiClient.ApplyStatus()
	if err != nil {
		return nil, fmt.Errorf("failed to get apply status: %w", err)
	}

	t, err := apiClient.GetLUT()
	if err != nil {
		return nil, fmt.Errorf("failed to get lut: %w", err)
	}

	conf, err := apiClient.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get config: %w", err)
	}

	return &statusData{
		version: v,
		red:     r,
		green:   g,
		blue:    b,
		applyOK: applyOK,
		lut:     t,
		config:  conf,
	}, nil
}

func (d *statusData) toJSON() statusJSON {
	c := config.NewFileFromConfig(d.config, "")
	modified := d.lut.Modified
	if modified == nil {
		modified = []int{}
	}
	return statusJSON{
		ProtocolVersion: d.version,
		Gain:            statusGainJSON{Red: d.red, Green: d.green, Blue: d.blue},
		LastApplyOK:     d.applyOK,
		LUT:             statusLUTJSON{Linear: d.lut.Linear, Modified: modified},
		Configuration: statusConfigJSON{
			Sink:               c.Sink(),
			SinkTarget:         c.SinkTarget(),
			ReapplySchedule:    c.ReapplySchedule(),
			ApplyOnStart:       c.ApplyOnStart(),
			AllowNonRootAccess: c.AllowNonRootAccess(),
		},
	}
}

func NewStatusCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "status",
		GroupID: gBasic,
		Short:   "Get the current calibration status",
		Long:    `Get the RGB gains, lookup table state, last apply result and daemon configuration.`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := fetchStatusData()
			if err != nil {
				return err
			}

			if asJSON {
				b, err := json.MarshalIndent(data.toJSON(), "", "  ")
				if err != nil {
					return err
				}
				cmd.Println(string(b))
				return nil
			}

			s := data.toJSON()

			cmd.Println(bold("Panel:"))
			cmd.Printf("  Protocol version: %s\n", bold("%s", s.ProtocolVersion))
			cmd.Printf("  RGB gains: %s\n", bold("%d %d %d", s.Gain.Red, s.Gain.Green, s.Gain.Blue))
			cmd.Printf("  Last apply succeeded: %s\n", bool2Text(s.LastApplyOK))
			cmd.Println()

			cmd.Println(bold("Lookup table:"))
			cmd.Printf("  Linear: %s\n", bool2Text(s.LUT.Linear))
			if !s.LUT.Linear {
				cmd.Printf("  Modified entries: %s\n", bold("%d", len(s.LUT.Modified)))
			}
			cmd.Println()

			cmd.Println(bold("Configuration:"))
			cmd.Printf("  Sink: %s\n", bold("%s", s.Configuration.Sink))
			if s.Configuration.SinkTarget != "" {
				cmd.Printf("  Sink target: %s\n", bold("%s", s.Configuration.SinkTarget))
			}
			if s.Configuration.ReapplySchedule != "" {
				cmd.Printf("  Re-apply schedule: %s\n", bold("%s", s.Configuration.ReapplySchedule))
			} else {
				cmd.Printf("  Re-apply schedule: %s\n", bold("disabled"))
			}
			cmd.Printf("  Apply on start: %s\n", bool2Text(s.Configuration.ApplyOnStart))
			cmd.Printf("  Allow non-root users to access the daemon: %s\n", bool2Text(s.Configuration.AllowNonRootAccess))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print status as JSON")

	return cmd
}
