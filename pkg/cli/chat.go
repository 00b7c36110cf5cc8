package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/aide-lab/mnemo/pkg/cli/config"
	"github.com/aide-lab/mnemo/pkg/domain/types"
	memsvc "github.com/aide-lab/mnemo/pkg/service/memory"
	"github.com/aide-lab/mnemo/pkg/usecase"
	"github.com/aide-lab/mnemo/pkg/utils/safe"
)

// cmdChat runs a single conversation turn from the command line. Useful for
// poking at a backend without standing up the HTTP server.
func cmdChat() *cli.Command {
	var userID string
	var conversationID string
	var message string
	var appCfg config.AppConfig
	var repoCfg config.Repository
	var geminiCfg config.Gemini
	var memCfg config.Memory

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user",
			Usage:       "User ID owning the conversation",
			Required:    true,
			Sources:     cli.EnvVars("MNEMO_CHAT_USER"),
			Destination: &userID,
		},
		&cli.StringFlag{
			Name:        "conversation",
			Usage:       "Conversation ID (a new conversation is created when omitted)",
			Sources:     cli.EnvVars("MNEMO_CHAT_CONVERSATION"),
			Destination: &conversationID,
		},
		&cli.StringFlag{
			Name:        "message",
			Usage:       "Message text to post",
			Required:    true,
			Destination: &message,
		},
	}

	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, memCfg.Flags()...)

	return &cli.Command{
		Name:  "chat",
		Usage: "Post a single message and print the assistant reply",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := appCfg.Configure(); err != nil {
				return goerr.Wrap(err, "failed to load configuration")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize LLM client")
			}

			summaryClient, err := geminiCfg.ConfigureSummarizer(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize summarizer client")
			}

			mem := memsvc.New(repo, summaryClient, memCfg.Configure())

			var ucOpts []usecase.Option
			if appCfg.Persona.Instructions != "" {
				ucOpts = append(ucOpts, usecase.WithPersona(appCfg.Persona.Instructions))
			}
			uc := usecase.New(repo, mem, llmClient, geminiCfg.Model(), ucOpts...)

			owner := types.UserID(userID)
			convID := types.ConversationID(conversationID)
			if convID == "" {
				conv, err := uc.Conversation.Create(ctx, owner, "")
				if err != nil {
					return goerr.Wrap(err, "failed to create conversation")
				}
				convID = conv.ID
				fmt.Printf("conversation: %s\n", convID)
			}

			reply, err := uc.Chat.Post(ctx, owner, convID, message)
			if err != nil {
				return goerr.Wrap(err, "failed to post message")
			}

			fmt.Println(reply.Text)
			return nil
		},
	}
}
