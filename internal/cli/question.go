package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/rcfa/internal/wire"
)

var questionCmd = &cobra.Command{
	Use:   "question",
	Short: "Manage follow-up questions",
	Long:  "List and answer the follow-up questions generated by the analysis",
}

var questionListCmd = &cobra.Command{
	Use:   "list [case-id]",
	Short: "List the follow-up questions of a case",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := actorContext()
		if err != nil {
			return err
		}
		return wire.QuestionAdapter().List(ctx, args[0])
	},
}

var questionAnswerCmd = &cobra.Command{
	Use:   "answer [question-id] [answer]",
	Short: "Answer a follow-up question (answering again revises the answer)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := actorContext()
		if err != nil {
			return err
		}
		return wire.QuestionAdapter().Answer(ctx, args[0], args[1])
	},
}

func init() {
	questionCmd.AddCommand(questionListCmd)
	questionCmd.AddCommand(questionAnswerCmd)
}

// QuestionCmd returns the question command
func QuestionCmd() *cobra.Command {
	return questionCmd
}
