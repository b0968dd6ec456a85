// internal/cli/check.go

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stelios-avg/locom/internal/domain/moderation"
	moderationService "github.com/stelios-avg/locom/internal/service/moderation"
)

var (
	checkDenylist  string
	checkImageName string
	checkImageSize int64
	checkImageType string
)

var checkTextCmd = &cobra.Command{
	Use:   "check-text [text...]",
	Short: "Run the content filter on a piece of text",
	Args:  cobra.MinimumNArgs(1),
	RunE:  checkTextAction,
}

func init() {
	checkTextCmd.Flags().StringVar(&checkDenylist, "denylist", "", "YAML denylist file (default: built-in list)")
	checkTextCmd.Flags().StringVar(&checkImageName, "image-name", "", "attached image file name")
	checkTextCmd.Flags().Int64Var(&checkImageSize, "image-size", 0, "attached image size in bytes")
	checkTextCmd.Flags().StringVar(&checkImageType, "image-type", "", "attached image MIME type")
	rootCmd.AddCommand(checkTextCmd)
}

func checkTextAction(cmd *cobra.Command, args []string) error {
	filter := moderationService.NewFilter()
	if checkDenylist != "" {
		denylist, err := moderationService.LoadDenylist(checkDenylist)
		if err != nil {
			return fmt.Errorf("load denylist: %w", err)
		}
		filter = moderationService.NewFilterWithDenylist(denylist)
	}

	text := strings.Join(args, " ")

	if checkImageName == "" && checkImageType == "" && checkImageSize == 0 {
		return printJSON(cmd.OutOrStdout(), filter.CheckText(text))
	}

	image := &moderation.Image{
		Name:        checkImageName,
		Size:        checkImageSize,
		ContentType: checkImageType,
	}
	return printJSON(cmd.OutOrStdout(), filter.ValidateSubmission(text, image))
}
