package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var submitCmd = &cobra.Command{
	Use:   "submit <session-id>",
	Short: "Submit answers for a generated interview and get them scored",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		env := setup(ctx, true)
		defer env.Close()

		answers, err := submittedAnswers(cmd)
		if err != nil {
			env.logger.Fatal("reading answers", zap.Error(err))
		}

		result, err := env.service.Submit(ctx, args[0], answers)
		if err != nil {
			env.logger.Fatal("evaluating the interview", zap.Error(err), zap.String("session_id", args[0]), zap.String("hint", hintFor(err)))
		}

		printResult(cmd.OutOrStdout(), result.Session)
	},
}

func init() {
	rootCmd.AddCommand(submitCmd)

	submitCmd.Flags().StringArrayP("answer", "a", nil, "answer for the next question, repeat in question order")
	submitCmd.Flags().String("answers-file", "", "json file with an array of answers in question order")
}

func submittedAnswers(cmd *cobra.Command) ([]string, error) {
	file, _ := cmd.Flags().GetString("answers-file")
	if file == "" {
		return cmd.Flags().GetStringArray("answer")
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading answers file: %w", err)
	}

	var answers []string
	if err := json.Unmarshal(data, &answers); err != nil {
		return nil, fmt.Errorf("decoding answers file %q: %w", file, err)
	}
	return answers, nil
}
