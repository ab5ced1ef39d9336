// Package predict provides the predict command, which forecasts
// contamination for a storage temperature and humidity.
package predict

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ayushbarthwal/eatsafe/internal/app"
	"github.com/ayushbarthwal/eatsafe/internal/conf"
	"github.com/ayushbarthwal/eatsafe/internal/quality"
	"github.com/ayushbarthwal/eatsafe/internal/safety"
)

type options struct {
	temperature float64
	humidity    float64
	batchID     uint
	save        bool
	jsonOutput  bool
}

// output is the JSON form printed with --json.
type output struct {
	Temperature  float64          `json:"temperature"`
	Humidity     float64          `json:"humidity"`
	CFU          int              `json:"cfu"`
	Risk         safety.RiskLabel `json:"risk"`
	Saved        bool             `json:"saved"`
	PredictionID *uint            `json:"predictionId,omitempty"`
}

// Command creates and returns the predict command
func Command(settings *conf.Settings) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Forecast bacterial growth for storage conditions",
		Long: `Predict estimates the bacteria count (CFU) and risk label for a storage
temperature in °C and relative humidity in percent. With --save the forecast
is stored in the database like a prediction made through the API.`,
		Example: "  eatsafe predict --temperature 18 --humidity 75",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := safety.ValidateConditions(opts.temperature, opts.humidity); err != nil {
				return err
			}
			if opts.save {
				return runSaved(cmd, settings, &opts)
			}
			f := safety.Predict(opts.temperature, opts.humidity)
			return writeResult(cmd.OutOrStdout(), &opts, output{
				Temperature: opts.temperature,
				Humidity:    opts.humidity,
				CFU:         f.CFU,
				Risk:        f.Risk,
			})
		},
	}

	cmd.Flags().Float64VarP(&opts.temperature, "temperature", "t", 0, "Storage temperature in °C")
	cmd.Flags().Float64Var(&opts.humidity, "humidity", 0, "Relative humidity in percent")
	cmd.Flags().UintVar(&opts.batchID, "batch", 0, "Batch the prediction belongs to (with --save)")
	cmd.Flags().BoolVar(&opts.save, "save", false, "Store the prediction in the database")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print the result as JSON")
	_ = cmd.MarkFlagRequired("temperature")
	_ = cmd.MarkFlagRequired("humidity")

	return cmd
}

func runSaved(cmd *cobra.Command, settings *conf.Settings, opts *options) error {
	ctx := cmd.Context()
	a, err := app.New(ctx, settings)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	svc, err := a.QualityService()
	if err != nil {
		return err
	}

	in := quality.PredictInput{
		Temperature: opts.temperature,
		Humidity:    opts.humidity,
		Save:        true,
	}
	if opts.batchID != 0 {
		id := opts.batchID
		in.BatchID = &id
	}

	res, err := svc.Predict(ctx, in)
	if err != nil {
		return err
	}
	return writeResult(cmd.OutOrStdout(), opts, output{
		Temperature:  res.Temperature,
		Humidity:     res.Humidity,
		CFU:          res.Forecast.CFU,
		Risk:         res.Forecast.Risk,
		Saved:        res.Saved,
		PredictionID: res.PredictionID,
	})
}

func writeResult(w io.Writer, opts *options, out output) error {
	if opts.jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	_, err := fmt.Fprintf(w, "%.1f °C, %.1f %% humidity: %d CFU (%s)\n",
		out.Temperature, out.Humidity, out.CFU, out.Risk)
	if err == nil && out.PredictionID != nil {
		_, err = fmt.Fprintf(w, "saved as prediction %d\n", *out.PredictionID)
	}
	return err
}
