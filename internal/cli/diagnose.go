package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"homefix/internal/diagnosis"
	"homefix/internal/materials"
	"homefix/internal/model"
	"homefix/internal/photo"
	"homefix/internal/vision"
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Diagnose a repair issue from local photos",
	Example: `  homefix diagnose --photo sink.jpg --photo trap.png \
    --description "water pooling under the kitchen sink"`,
	RunE: runDiagnose,
}

var (
	diagnosePhotos      []string
	diagnoseDescription string
)

func init() {
	diagnoseCmd.Flags().StringArrayVar(&diagnosePhotos, "photo", nil, "photo file (repeat up to 5 times)")
	diagnoseCmd.Flags().StringVar(&diagnoseDescription, "description", "", "what you see, hear or smell")
	_ = diagnoseCmd.MarkFlagRequired("photo")
	_ = diagnoseCmd.MarkFlagRequired("description")
}

func runDiagnose(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(false, nil)
	if err != nil {
		return withExitCode(ExitConfigInvalid, err)
	}
	logger, err := setupLogger(cfg)
	if err != nil {
		return withExitCode(ExitConfigInvalid, err)
	}

	photos, err := readPhotoFiles(diagnosePhotos)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	visionModel, err := vision.New(ctx, cfg)
	if err != nil {
		return withExitCode(ExitConfigInvalid, err)
	}
	extractor := diagnosis.NewExtractor(visionModel, logger)
	estimator := materials.NewEstimator(visionModel, logger)

	var (
		result diagnosis.Result
		bom    model.BillOfMaterials
	)
	err = runWithSpinner(ctx, os.Stderr, "Analyzing photos with "+vision.Name(cfg)+"...", func(ctx context.Context) error {
		var werr error
		if result, werr = extractor.Analyze(ctx, diagnoseDescription, photos); werr != nil {
			return werr
		}
		bom, werr = estimator.Estimate(ctx, result.Diagnosis.IssueType)
		return werr
	})
	if err != nil {
		return err
	}

	if globalFlags.JSON {
		emitJSON(map[string]interface{}{
			"diagnosis": result.Diagnosis,
			"bom":       bom,
		})
		return nil
	}
	st := newStyles(os.Stdout, false)
	renderDiagnosis(os.Stdout, st, result.Diagnosis)
	fmt.Println()
	renderBOM(os.Stdout, st, bom)
	return nil
}

// readPhotoFiles loads and normalizes photos from disk. The content type is
// sniffed from the bytes, not the file extension.
func readPhotoFiles(paths []string) ([]model.Photo, error) {
	inputs := make([]interface{}, 0, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read photo %s: %w", p, err)
		}
		inputs = append(inputs, map[string]interface{}{
			"data":     base64.StdEncoding.EncodeToString(data),
			"mimeType": http.DetectContentType(data),
		})
	}
	photos, err := photo.NormalizeAll(inputs)
	if err != nil {
		return nil, err
	}
	return photos, nil
}
