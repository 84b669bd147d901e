package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past interviews, newest first",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()
		env := setup(ctx, false)
		defer env.Close()

		summaries, err := env.service.History(ctx)
		if err != nil {
			env.logger.Fatal("listing interviews", zap.Error(err))
		}

		out := cmd.OutOrStdout()
		if viper.GetBool("json") {
			pretty, _ := json.MarshalIndent(summaries, "", "  ")
			fmt.Fprintln(out, string(pretty))
			return
		}

		if len(summaries) == 0 {
			fmt.Fprintln(out, "No interviews yet.")
			return
		}
		for _, s := range summaries {
			status := "pending"
			if s.Completed {
				status = fmt.Sprintf("%.1f/10 (%.0f%%)", s.AverageScore, s.ProgressPercentage)
			}
			fmt.Fprintf(out, "%s  %s  %-16s %-30s %s\n", s.ID, s.CreatedAt.Local().Format("2006-01-02 15:04"), s.Mode, s.Title, status)
		}
	},
}

var showCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show questions, answers and feedback of one interview",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		env := setup(ctx, false)
		defer env.Close()

		session, err := env.service.Session(ctx, args[0])
		if err != nil {
			env.logger.Fatal("loading the interview", zap.Error(err), zap.String("hint", hintFor(err)))
		}

		out := cmd.OutOrStdout()
		if viper.GetBool("json") {
			pretty, _ := json.MarshalIndent(session, "", "  ")
			fmt.Fprintln(out, string(pretty))
			return
		}

		if !session.Completed() {
			fmt.Fprintf(out, "Interview %s (%s) is pending.\n\n", session.ID, session.Title())
			printQuestions(out, session)
			return
		}
		printResult(out, session)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(showCmd)
}
