package main

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/kamio90/zus-retirement-simulator-sub000/api"
	"github.com/kamio90/zus-retirement-simulator-sub000/engine"
)

var (
	simBirthYear      int
	simGender         string
	simStartWorkYear  int
	simGrossMonthly   string
	simContract       string
	simRetirementAge  int
	simInitialCapital string
	simSubAccount     string
	simAbsenceFactor  float64
	simClaimMonth     int
	simAnchorYear     int
	simCompact        bool
)

// simulateCmd runs one calculation.
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run one calculation and print the result as JSON",
	Long: `Runs the calculation pipeline once against the configured providers
and prints the full result, including the capital trajectory, the
finalization step and the explanation lines.

The income is given either by --gross-monthly or by --contract, a contract
object such as '{"type": "self_employed", "declared_base": 5000}'.`,
	Example: `  server simulate --birth-year 1990 --gender M --start-work-year 2010 --gross-monthly 6500
  server simulate --birth-year 1995 --gender F --start-work-year 2020 \
    --contract '{"type": "civil_law", "gross_monthly": 3000}' --claim-month 2`,
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

func init() {
	f := simulateCmd.Flags()
	f.IntVar(&simBirthYear, "birth-year", 0, "Year of birth (required)")
	f.StringVar(&simGender, "gender", "", "Gender: M or F (required)")
	f.IntVar(&simStartWorkYear, "start-work-year", 0, "First year of contributions (required)")
	f.StringVar(&simGrossMonthly, "gross-monthly", "", "Gross monthly wage in anchor-year money")
	f.StringVar(&simContract, "contract", "", "Contract object as JSON, instead of --gross-monthly")
	f.IntVar(&simRetirementAge, "retirement-age", 0, "Retirement age (default: statutory age for the gender)")
	f.StringVar(&simInitialCapital, "initial-capital", "", "Capital accrued before the reform")
	f.StringVar(&simSubAccount, "sub-account", "", "Sub-account balance")
	f.Float64Var(&simAbsenceFactor, "absence-factor", engine.DefaultAbsenceFactor, "Share of each year with contributions")
	f.IntVar(&simClaimMonth, "claim-month", engine.DefaultClaimMonth, "Month of the pension claim (1-12)")
	f.IntVar(&simAnchorYear, "anchor-year", 0, "Year whose money the real pension is expressed in")
	f.BoolVar(&simCompact, "compact", false, "Print compact JSON")

	_ = simulateCmd.MarkFlagRequired("birth-year")
	_ = simulateCmd.MarkFlagRequired("gender")
	_ = simulateCmd.MarkFlagRequired("start-work-year")
	simulateCmd.MarkFlagsMutuallyExclusive("gross-monthly", "contract")
	simulateCmd.MarkFlagsOneRequired("gross-monthly", "contract")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	req, err := simulateRequestFromFlags(cmd)
	if err != nil {
		return err
	}
	in, err := req.ToInput()
	if err != nil {
		return err
	}

	set, err := openProviders(cmd.Context())
	if err != nil {
		return err
	}
	defer set.close()

	eng, err := engine.New(set.providers, engine.WithLogger(logger.Named("engine")))
	if err != nil {
		return err
	}
	out, err := eng.Calculate(in)
	if err != nil {
		return err
	}

	var data []byte
	if simCompact {
		data, err = json.Marshal(out)
	} else {
		data, err = json.MarshalIndent(out, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

// simulateRequestFromFlags maps the flags onto the API request shape. Only
// flags the user set become optional fields, so engine defaults apply.
func simulateRequestFromFlags(cmd *cobra.Command) (api.SimulateRequest, error) {
	flags := cmd.Flags()
	req := api.SimulateRequest{
		BirthYear:     simBirthYear,
		Gender:        engine.Gender(simGender),
		StartWorkYear: simStartWorkYear,
	}

	var err error
	if req.GrossMonthly, err = moneyFlag(flags.Changed("gross-monthly"), "gross-monthly", simGrossMonthly); err != nil {
		return req, err
	}
	if req.InitialCapital, err = moneyFlag(flags.Changed("initial-capital"), "initial-capital", simInitialCapital); err != nil {
		return req, err
	}
	if req.SubAccountBalance, err = moneyFlag(flags.Changed("sub-account"), "sub-account", simSubAccount); err != nil {
		return req, err
	}
	if flags.Changed("contract") {
		req.Contract = json.RawMessage(simContract)
	}
	if flags.Changed("retirement-age") {
		req.RetirementAge = &simRetirementAge
	}
	if flags.Changed("absence-factor") {
		req.AbsenceFactor = &simAbsenceFactor
	}
	if flags.Changed("claim-month") {
		req.ClaimMonth = &simClaimMonth
	}
	if flags.Changed("anchor-year") {
		req.AnchorYear = &simAnchorYear
	}
	return req, nil
}

func moneyFlag(set bool, name, value string) (*engine.Money, error) {
	if !set {
		return nil, nil
	}
	m, err := engine.ParseMoney(value)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s %q: %w", name, value, err)
	}
	return &m, nil
}
