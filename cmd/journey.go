package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcoskids/marcos/internal/answers"
	"github.com/marcoskids/marcos/internal/content"
	"github.com/marcoskids/marcos/internal/engine"
	"github.com/marcoskids/marcos/internal/session"
	"github.com/marcoskids/marcos/internal/ui/views"
)

var journeyCmd = &cobra.Command{
	Use:   "journey",
	Short: "Run assessment sessions",
}

var journeyStartCmd = &cobra.Command{
	Use:   "start <child-id>",
	Short: "Start a session, or return the child's open one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		res, err := rt.engine.StartOrResume(cmd.Context(), user, args[0])
		if engine.IsContentGap(err) {
			fmt.Println("No content is available for this child's age yet.")
			return nil
		}
		if err != nil {
			return err
		}
		if res.Resumed {
			fmt.Println("Returning the open session.")
		}
		printSession(cmd, rt, res.Session)
		return nil
	},
}

var journeyAnswerCmd = &cobra.Command{
	Use:   "answer <session-id> <answer>",
	Short: "Answer the current question (1/sim, 2/não, 3/não sei)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		questionID, _ := cmd.Flags().GetString("question")
		v, err := answers.ParseValue(args[1])
		if err != nil {
			return err
		}

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		if questionID == "" {
			s, err := rt.engine.Session(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			id, ok := s.CurrentQuestionID()
			if !ok {
				return fmt.Errorf("%w: nothing left to answer", answers.ErrSessionCompleted)
			}
			questionID = id
		}

		res, err := rt.engine.RecordAnswer(cmd.Context(), args[0], questionID, v)
		if err != nil {
			return err
		}
		w := renderWidth(cmd)
		fmt.Println(views.Answer(res.Response, res.NewBadges, w))
		if res.Session.Status == session.StatusCompleted {
			fmt.Println(views.Summary(session.BuildSummary(res.Session, rt.engine.Now()), w))
			return nil
		}
		printSession(cmd, rt, res.Session)
		return nil
	},
}

var journeyPauseCmd = &cobra.Command{
	Use:   "pause <session-id>",
	Short: "Pause an active session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return transition(cmd, args[0], (*engine.Engine).Pause)
	},
}

var journeyResumeCmd = &cobra.Command{
	Use:   "resume <session-id>",
	Short: "Resume a paused session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return transition(cmd, args[0], (*engine.Engine).Resume)
	},
}

var journeyShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show a session and its current question",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, _ := cmd.Flags().GetBool("summary")

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		s, err := rt.engine.Session(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if summary || s.Status == session.StatusCompleted {
			fmt.Println(views.Summary(session.BuildSummary(s, rt.engine.Now()), renderWidth(cmd)))
			return nil
		}
		printSession(cmd, rt, s)
		return nil
	},
}

type transitionFunc func(*engine.Engine, context.Context, string) (session.Session, error)

func transition(cmd *cobra.Command, sessionID string, step transitionFunc) error {
	rt, err := openRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	s, err := step(rt.engine, cmd.Context(), sessionID)
	if err != nil {
		return err
	}
	printSession(cmd, rt, s)
	return nil
}

func printSession(cmd *cobra.Command, rt *runtime, s session.Session) {
	var current *content.Question
	if q, ok := rt.engine.CurrentQuestion(s); ok {
		current = &q
	}
	fmt.Println(views.Session(s, current, renderWidth(cmd)))
}

func init() {
	journeyStartCmd.Flags().String("user", "", "Guardian user ID (defaults to the child's guardian)")
	journeyAnswerCmd.Flags().String("question", "", "Question ID (defaults to the current question)")
	journeyShowCmd.Flags().Bool("summary", false, "Show the session summary")

	journeyCmd.AddCommand(journeyStartCmd)
	journeyCmd.AddCommand(journeyAnswerCmd)
	journeyCmd.AddCommand(journeyPauseCmd)
	journeyCmd.AddCommand(journeyResumeCmd)
	journeyCmd.AddCommand(journeyShowCmd)
}
