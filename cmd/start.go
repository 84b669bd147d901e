package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/interview"
	"github.com/spigell/interview-coach/internal/simulation"
)

var modeDescriptions = map[interview.Mode]string{
	interview.ModeTechStack:      "technology stack",
	interview.ModeJobDescription: "job description",
	interview.ModeCV:             "uploaded résumé",
	interview.ModeBehavioral:     "soft skills",
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Generate a new interview and answer it interactively",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()
		env := setup(ctx, true)
		defer env.Close()

		req, err := startRequest(cmd)
		if err != nil {
			env.logger.Fatal("preparing the interview", zap.Error(err))
		}

		session, err := env.service.Start(ctx, req)
		if err != nil {
			env.logger.Fatal("starting the interview", zap.Error(err), zap.String("hint", hintFor(err)))
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Interview %s (%s)\n\n", session.ID, session.Title())

		skip, _ := cmd.Flags().GetBool("no-answer")
		if skip {
			printQuestions(out, session)
			fmt.Fprintf(out, "\nSubmit later with: %s submit %s --answer ...\n", app, session.ID)
			return
		}

		answers, err := askAnswers(session)
		if err != nil {
			env.logger.Fatal("reading answers", zap.Error(err),
				zap.String("hint", fmt.Sprintf("the interview is saved, submit it with '%s submit %s'", app, session.ID)))
		}

		result, err := env.service.Submit(ctx, session.ID, answers)
		if err != nil {
			env.logger.Fatal("evaluating the interview", zap.Error(err), zap.String("hint", hintFor(err)))
		}

		printResult(out, result.Session)
	},
}

func init() {
	rootCmd.AddCommand(startCmd)

	startCmd.Flags().StringP("mode", "m", "", "interview mode: tech_stack, job_description, cv or behavioral (asked when unset)")
	startCmd.Flags().String("data", "", "technologies, job description or soft skills focus (asked when unset)")
	startCmd.Flags().String("resume-id", "", "id of an uploaded résumé, required for the cv mode")
	startCmd.Flags().Bool("no-answer", false, "only generate and print the questions")
}

func startRequest(cmd *cobra.Command) (simulation.StartRequest, error) {
	var req simulation.StartRequest

	name, _ := cmd.Flags().GetString("mode")
	if name == "" {
		selected, err := selectMode()
		if err != nil {
			return req, err
		}
		req.Mode = selected
	} else {
		mode, err := interview.ParseMode(name)
		if err != nil {
			return req, err
		}
		req.Mode = mode
	}

	req.Data, _ = cmd.Flags().GetString("data")
	req.ResumeID, _ = cmd.Flags().GetString("resume-id")

	if req.Mode == interview.ModeCV {
		if req.ResumeID == "" {
			return req, fmt.Errorf("%w: --resume-id is required for the cv mode", interview.ErrInvalidInput)
		}
		return req, nil
	}

	if strings.TrimSpace(req.Data) == "" {
		p := promptui.Prompt{
			Label:    fmt.Sprintf("Describe the %s", modeDescriptions[req.Mode]),
			Validate: notBlank,
		}
		data, err := p.Run()
		if err != nil {
			return req, err
		}
		req.Data = data
	}

	return req, nil
}

func selectMode() (interview.Mode, error) {
	items := make([]string, len(interview.Modes))
	for i, m := range interview.Modes {
		items[i] = fmt.Sprintf("%s (%s)", m, modeDescriptions[m])
	}

	prompt := promptui.Select{
		Label: "Choose an interview mode",
		Items: items,
	}
	idx, _, err := prompt.Run()
	if err != nil {
		return "", err
	}
	return interview.Modes[idx], nil
}

// askAnswers reads one answer per question. An empty answer skips the question.
func askAnswers(session *interview.Session) ([]string, error) {
	answers := make([]string, len(session.Questions))
	for i, q := range session.Questions {
		p := promptui.Prompt{
			Label: fmt.Sprintf("[%d/%d %s] %s", i+1, len(session.Questions), q.Category, q.Text),
		}
		answer, err := p.Run()
		if err != nil {
			return nil, err
		}
		answers[i] = answer
	}
	return answers, nil
}

func notBlank(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("must not be empty")
	}
	return nil
}

func printQuestions(out io.Writer, session *interview.Session) {
	for i, q := range session.Questions {
		fmt.Fprintf(out, "%d. [%s] %s\n", i+1, q.Category, q.Text)
	}
}

func printResult(out io.Writer, session *interview.Session) {
	fmt.Fprintf(out, "\n%s: %.1f/10\n\n", session.Title(), session.AggregateScore())
	for i, q := range session.Questions {
		a := session.Answers[i]
		fmt.Fprintf(out, "%d. %s\n   Answer:   %s\n   Score:    %.1f\n   Feedback: %s\n\n", i+1, q.Text, a.UserAnswer, a.Score, a.Feedback)
	}
	if session.OverallFeedback != "" {
		fmt.Fprintf(out, "Overall: %s\n", session.OverallFeedback)
	}
}

func hintFor(err error) string {
	switch {
	case interview.IsServiceUnavailable(err):
		return "the language model is unavailable, try again later"
	case interview.IsParseError(err):
		return "the language model returned an unexpected response, try again"
	case errors.Is(err, interview.ErrInvalidInput):
		return "check the command arguments"
	case simulation.IsNotFound(err):
		return fmt.Sprintf("list sessions with '%s history'", app)
	case errors.Is(err, simulation.ErrAlreadyEvaluated):
		return fmt.Sprintf("see the result with '%s show'", app)
	default:
		return ""
	}
}
