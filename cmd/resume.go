package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var resumeCmd = &cobra.Command{
	Use:   "resume <file>",
	Short: "Upload a résumé (pdf or text) for cv based interviews",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		env := setup(ctx, true)
		defer env.Close()

		r, err := env.service.UploadResume(ctx, args[0])
		if err != nil {
			env.logger.Fatal("uploading the resume", zap.Error(err), zap.String("file", args[0]))
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Resume stored with id %s\n", r.ID)
		if r.Profile == nil {
			fmt.Fprintln(out, "No profile could be extracted; the raw text will be used.")
			return
		}
		fmt.Fprintf(out, "Role:   %s\n", r.Profile.Role)
		fmt.Fprintf(out, "Skills: %s\n", strings.Join(r.Profile.Skills, ", "))
		fmt.Fprintf(out, "\nStart an interview with: %s start --mode cv --resume-id %s\n", app, r.ID)
	},
}

func init() {
	rootCmd.AddCommand(resumeCmd)
}
