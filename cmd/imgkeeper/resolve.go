package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/memohai/imgkeeper/internal/channel"
	"github.com/memohai/imgkeeper/internal/channel/adapters/line"
	"github.com/memohai/imgkeeper/internal/logger"
	"github.com/memohai/imgkeeper/internal/namecache"
	"github.com/memohai/imgkeeper/internal/resolver"
)

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <group|room> <id>",
		Short: "Print the folder name images from a conversation are saved to",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := parseSource(args[0], args[1])
			if err != nil {
				return err
			}
			cfg, err := loadConfig(configPath(cmd))
			if err != nil {
				return err
			}
			logger.Init(cfg.Log.Level, cfg.Log.Format)
			client, err := line.NewClient(cfg.Line.ChannelAccessToken)
			if err != nil {
				return err
			}
			res := resolver.New(logger.L, client, namecache.NewMemory(cfg.Cache.TTLDuration()), resolverOptions(cfg))
			_, err = fmt.Fprintln(cmd.OutOrStdout(), res.Resolve(context.Background(), source))
			return err
		},
	}
}

func parseSource(kind, id string) (channel.Source, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return channel.Source{}, fmt.Errorf("id is required")
	}
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "group":
		return channel.Source{Kind: channel.SourceGroup, GroupID: id}, nil
	case "room":
		return channel.Source{Kind: channel.SourceRoom, RoomID: id}, nil
	case "user":
		return channel.Source{Kind: channel.SourceUser, UserID: id}, nil
	default:
		return channel.Source{}, fmt.Errorf("unknown source kind %q (want group, room or user)", kind)
	}
}
