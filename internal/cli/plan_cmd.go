package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"homefix/internal/model"
	"homefix/internal/plan"
	"homefix/internal/vision"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate a step-by-step repair plan",
	RunE:  runPlan,
}

var (
	planIssue string
	planRisk  string
)

func init() {
	planCmd.Flags().StringVar(&planIssue, "issue", "", "diagnosed issue type")
	planCmd.Flags().StringVar(&planRisk, "risk", string(model.RiskLow), "risk level: "+strings.Join(model.RiskLevels, "|"))
	_ = planCmd.MarkFlagRequired("issue")
}

func runPlan(cmd *cobra.Command, _ []string) error {
	risk, ok := model.ParseRiskLevel(planRisk)
	if !ok {
		return fmt.Errorf("--risk must be one of %s", strings.Join(model.RiskLevels, ", "))
	}

	// high and critical plans never reach the model, so no key is needed
	cfg, err := loadConfig(risk.RequiresProfessional(), nil)
	if err != nil {
		return withExitCode(ExitConfigInvalid, err)
	}
	logger, err := setupLogger(cfg)
	if err != nil {
		return withExitCode(ExitConfigInvalid, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	var visionModel model.VisionModel
	if !risk.RequiresProfessional() {
		if visionModel, err = vision.New(ctx, cfg); err != nil {
			return withExitCode(ExitConfigInvalid, err)
		}
	}
	generator := plan.NewGenerator(visionModel, logger)

	var p model.Plan
	err = runWithSpinner(ctx, os.Stderr, "Writing repair plan...", func(ctx context.Context) error {
		var werr error
		p, werr = generator.Generate(ctx, planIssue, risk)
		return werr
	})
	if err != nil {
		return err
	}

	if globalFlags.JSON {
		emitJSON(map[string]interface{}{
			"plan":     p,
			"progress": model.NewProgress(),
		})
		return nil
	}
	renderPlan(os.Stdout, newStyles(os.Stdout, false), p)
	return nil
}
